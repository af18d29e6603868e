// Copyright (c) 2010 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ciphertalk/roomcrypt/pkg/engineconf"
	"github.com/ciphertalk/roomcrypt/pkg/logtarget"
)

// Set at link time.
var (
	version   = "dev"
	buildDate = "unknown"
)

type command func(ctx context.Context, cfg *engineconf.Config, argv []string) error

var commands = map[string]command{
	"newroom":       newRoom,
	"inspect":       inspect,
	"encrypt":       cryptFile(true),
	"decrypt":       cryptFile(false),
	"keygen":        keygen,
	"serve":         serve,
	"send":          send,
	"defaultconfig": defaultConfig,
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	if Args.ShowHelp || flag.NArg() == 0 {
		Usage()
		return 0
	}

	name := flag.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		Usage()
		return 2
	}

	cfg := engineconf.New(nil)
	if Args.ConfigPath != "" {
		f, err := engineconf.NewConfigFile(Args.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to read config file: %v\n", err)
			return 1
		}
		cfg = f.GlobalConfig()
	}

	// Only the long-running server writes a log file unless asked to.
	logPath := Args.LogPath
	if logPath == "" && name == "serve" {
		logPath = cfg.StringValue("LogFile")
	}
	if logPath != "" {
		if err := logtarget.Target.OpenFile(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Unable to open log file: %v\n", err)
			return 1
		}
		defer logtarget.Target.Close()
	}
	log.SetPrefix("[R] ")
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(&logtarget.Target)

	ctx, stop := signalContext()
	defer stop()

	if err := cmd(ctx, cfg, flag.Args()[1:]); err != nil {
		log.Printf("%v: %v", name, err)
		return 1
	}
	return 0
}
