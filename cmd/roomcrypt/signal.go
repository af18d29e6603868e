// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ciphertalk/roomcrypt/pkg/logtarget"
)

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
// Rotation signals reopen the log file instead.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigchan := make(chan os.Signal, 10)
	signal.Notify(sigchan, append([]os.Signal{os.Interrupt, syscall.SIGTERM}, rotateSignals...)...)

	go func() {
		for {
			select {
			case sig := <-sigchan:
				if isRotateSignal(sig) {
					if err := logtarget.Target.Rotate(); err != nil {
						fmt.Fprintf(os.Stderr, "unable to rotate log file: %v\n", err)
					}
					continue
				}
				log.Printf("Received %v, stopping", sig)
				cancel()
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return ctx, func() {
		signal.Stop(sigchan)
		cancel()
	}
}

func isRotateSignal(sig os.Signal) bool {
	for _, s := range rotateSignals {
		if s == sig {
			return true
		}
	}
	return false
}
