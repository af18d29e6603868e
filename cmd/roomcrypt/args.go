package main

import (
	"flag"
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/ciphertalk/roomcrypt/pkg/cryptstate"
)

type UsageArgs struct {
	Version   string
	BuildDate string
	OS        string
	Arch      string
	Ciphers   string
	Modes     string
	Paddings  string
}

var usageTmpl = `usage: roomcrypt [options] <command> [command options]

 roomcrypt {{.Version}} ({{.BuildDate}})
 target: {{.OS}}, {{.Arch}}

 --help
     Shows this help listing.

 --config <config-path>
     Configuration file to read. Without it the built-in
     defaults are used (see the defaultconfig command).

 --log <log-path>
     Log file path. Logs always go to stderr as well.

commands:

 newroom [--cipher C] [--mode M] [--padding P] [--keybits N]
     Create a room and print its token.

     ciphers:  {{.Ciphers}}
     modes:    {{.Modes}}
     paddings: {{.Paddings}}

 inspect <token>
     Print the fields carried by a room token.

 encrypt --token T --key HEX --in F --out F
 decrypt --token T --key HEX --in F --out F
     Stream a file through the room described by the token,
     using the given hex key.

 keygen [--keybits N]
     Run a local Diffie-Hellman exchange with the configured
     group and print the derived key.

 serve [--dir D]
     Accept websocket transfers on the configured listen
     address and store received files in D.

 send --to URL --file F
     Create a room, run the handshake with the peer at URL
     and send the file.

 defaultconfig
     Print a configuration file documenting every key.
`

type args struct {
	ShowHelp   bool
	ConfigPath string
	LogPath    string
}

func Usage() {
	t, err := template.New("usage").Parse(usageTmpl)
	if err != nil {
		panic("unable to parse usage template")
	}

	err = t.Execute(os.Stdout, UsageArgs{
		Version:   version,
		BuildDate: buildDate,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Ciphers:   strings.Join(cryptstate.SupportedCiphers(), ", "),
		Modes:     strings.Join(cryptstate.SupportedModes(), ", "),
		Paddings:  strings.Join(cryptstate.SupportedPaddings(), ", "),
	})
	if err != nil {
		panic("unable to execute usage template")
	}
}

var Args args

func init() {
	flag.Usage = Usage

	flag.BoolVar(&Args.ShowHelp, "help", false, "")
	flag.StringVar(&Args.ConfigPath, "config", "", "")
	flag.StringVar(&Args.LogPath, "log", "", "")
}
