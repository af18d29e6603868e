// Copyright (c) 2010 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
	"github.com/ciphertalk/roomcrypt/pkg/cryptstate"
	"github.com/ciphertalk/roomcrypt/pkg/engineconf"
	"github.com/ciphertalk/roomcrypt/pkg/keyagreement"
	"github.com/ciphertalk/roomcrypt/pkg/logtarget"
	"github.com/ciphertalk/roomcrypt/pkg/replacefile"
	"github.com/ciphertalk/roomcrypt/pkg/rooms"
	"github.com/ciphertalk/roomcrypt/pkg/roomtoken"
	"github.com/ciphertalk/roomcrypt/pkg/transfer"
	"github.com/ciphertalk/roomcrypt/pkg/web"
)

var errUsage = errors.New("invalid arguments, see --help")

func componentLogger(name string) *log.Logger {
	return log.New(&logtarget.Target, fmt.Sprintf("[%v] ", name), log.LstdFlags|log.Lmicroseconds)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {}
	return fs
}

func newRoom(ctx context.Context, cfg *engineconf.Config, argv []string) error {
	fs := newFlagSet("newroom")
	cipher := fs.String("cipher", cfg.StringValue("Cipher"), "")
	mode := fs.String("mode", cfg.StringValue("Mode"), "")
	pad := fs.String("padding", cfg.StringValue("Padding"), "")
	keyBits := fs.Int("keybits", cfg.IntValue("KeyBits"), "")
	if err := fs.Parse(argv); err != nil {
		return errUsage
	}

	s, err := cryptstate.ParseSettings(*cipher, *mode, *pad, *keyBits)
	if err != nil {
		return err
	}
	_, token, err := rooms.New(nil).Create(s)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func inspect(ctx context.Context, cfg *engineconf.Config, argv []string) error {
	if len(argv) != 1 {
		return errUsage
	}
	f, err := roomtoken.Decode(argv[0])
	if err != nil {
		return err
	}
	fmt.Printf("room:     %v\n", f.RoomID)
	fmt.Printf("cipher:   %v\n", f.Cipher)
	fmt.Printf("mode:     %v\n", f.Mode)
	fmt.Printf("padding:  %v\n", f.Padding)
	fmt.Printf("iv:       %v\n", f.IV)
	fmt.Printf("key bits: %v\n", f.KeyBits)

	if _, err := rooms.FromFields(f); err != nil {
		return fmt.Errorf("token is not usable: %w", err)
	}
	return nil
}

func cryptFile(encrypting bool) command {
	name := "decrypt"
	if encrypting {
		name = "encrypt"
	}
	return func(ctx context.Context, cfg *engineconf.Config, argv []string) error {
		fs := newFlagSet(name)
		token := fs.String("token", "", "")
		keyHex := fs.String("key", "", "")
		in := fs.String("in", "-", "")
		out := fs.String("out", "-", "")
		if err := fs.Parse(argv); err != nil || *token == "" || *keyHex == "" {
			return errUsage
		}

		room, err := rooms.FromToken(*token)
		if err != nil {
			return err
		}
		key, err := hex.DecodeString(*keyHex)
		if err != nil {
			return fmt.Errorf("key: %w", err)
		}
		s, iv := room.Settings()
		cctx, err := cryptstate.New(s, iv, key)
		if err != nil {
			return err
		}

		var src io.Reader = os.Stdin
		if *in != "-" {
			f, err := os.Open(*in)
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}

		stream := transfer.DecryptStream
		if encrypting {
			stream = transfer.EncryptStream
		}
		chunkSize := cfg.IntValue("ChunkSize")

		if *out == "-" {
			_, err = stream(cctx, os.Stdout, src, chunkSize)
			return err
		}
		dst, err := replacefile.Create(*out)
		if err != nil {
			return err
		}
		n, err := stream(cctx, dst, src, chunkSize)
		if err != nil {
			dst.Abort()
			return err
		}
		if err := dst.Commit(); err != nil {
			return err
		}
		log.Printf("Wrote %d bytes to %v (%v)", n, *out, s)
		return nil
	}
}

func keygen(ctx context.Context, cfg *engineconf.Config, argv []string) error {
	fs := newFlagSet("keygen")
	keyBits := fs.Int("keybits", cfg.IntValue("KeyBits"), "")
	if err := fs.Parse(argv); err != nil {
		return errUsage
	}
	kl, err := blockcipher.ParseKeyLength(*keyBits)
	if err != nil {
		return err
	}

	g, p := cfg.StringValue("DHGenerator"), cfg.StringValue("DHPrime")
	a, err := keyagreement.New(g, p)
	if err != nil {
		return err
	}
	b, err := keyagreement.New(g, p)
	if err != nil {
		return err
	}
	sa, err := a.DeriveSharedSecret(b.PublicComponent())
	if err != nil {
		return err
	}
	sb, err := b.DeriveSharedSecret(a.PublicComponent())
	if err != nil {
		return err
	}
	if sa.Cmp(sb) != 0 {
		return errors.New("shared secrets differ")
	}
	fmt.Println(hex.EncodeToString(keyagreement.DeriveKey(sa, kl.Bytes())))
	return nil
}

// fileName reduces a peer-supplied name to a plain file name.
func fileName(f transfer.File) string {
	name := filepath.Base(filepath.Clean(string(filepath.Separator) + f.Name))
	if name == string(filepath.Separator) || name == "." {
		name = "transfer-" + strconv.FormatUint(uint64(f.TransferID), 10)
	}
	return name
}

func serve(ctx context.Context, cfg *engineconf.Config, argv []string) error {
	fs := newFlagSet("serve")
	dir := fs.String("dir", ".", "")
	addr := fs.String("listen", cfg.StringValue("ListenAddr"), "")
	if err := fs.Parse(argv); err != nil {
		return errUsage
	}
	if err := os.MkdirAll(*dir, 0750); err != nil {
		return err
	}

	reg := rooms.New(componentLogger("rooms"))
	hs := rooms.NewHandshake(reg, cfg.StringValue("DHGenerator"), cfg.StringValue("DHPrime"))
	rc := transfer.NewReceiver(reg, hs, func(f transfer.File) (io.WriteCloser, error) {
		return replacefile.Create(filepath.Join(*dir, fileName(f)))
	}, componentLogger("transfer"))
	rc.OnFile = func(f transfer.File) {
		log.Printf("Stored %v from %v (%d bytes)", fileName(f), f.From, f.Size)
	}

	tcpl, err := net.Listen("tcp", *addr)
	if err != nil {
		return err
	}
	wsl := web.NewListener(tcpl.Addr(), componentLogger("web"))
	srv := &http.Server{
		Handler:           wsl,
		ReadHeaderTimeout: 20 * time.Second,
		ErrorLog:          componentLogger("http"),
	}
	go srv.Serve(tcpl)
	log.Printf("Listening on ws://%v/, storing files in %v", tcpl.Addr(), *dir)

	go func() {
		<-ctx.Done()
		wsl.Close()
		srv.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := wsl.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			log.Printf("Peer connected from %v", conn.RemoteAddr())
			if err := rc.Receive(ctx, conn); err != nil && ctx.Err() == nil {
				log.Printf("Connection from %v: %v", conn.RemoteAddr(), err)
			}
		}()
	}
	wg.Wait()
	log.Printf("Stopped")
	return nil
}

func send(ctx context.Context, cfg *engineconf.Config, argv []string) error {
	host, _ := os.Hostname()
	fs := newFlagSet("send")
	to := fs.String("to", "", "")
	file := fs.String("file", "", "")
	from := fs.String("from", host, "")
	if err := fs.Parse(argv); err != nil || *to == "" || *file == "" {
		return errUsage
	}

	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	reg := rooms.New(componentLogger("rooms"))
	room, _, err := reg.Create(s)
	if err != nil {
		return err
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}

	conn, err := web.Dial(ctx, *to)
	if err != nil {
		return err
	}
	defer conn.Close()

	hs := rooms.NewHandshake(reg, cfg.StringValue("DHGenerator"), cfg.StringValue("DHPrime"))
	if _, err := transfer.Initiate(ctx, conn, hs, room.ID, *from, *to); err != nil {
		return err
	}
	number, err := reg.SafetyNumber(room.ID)
	if err != nil {
		return err
	}
	log.Printf("Room %v ready, safety number %v", room.ID, number)

	sender := transfer.NewSender(reg, *from, *to, componentLogger("transfer"))
	sender.ChunkSize = cfg.IntValue("ChunkSize")
	if err := sender.Send(ctx, conn, room.ID, filepath.Base(*file), f, st.Size()); err != nil {
		return err
	}
	log.Printf("Sent %v (%d bytes)", *file, st.Size())
	return nil
}

func defaultConfig(ctx context.Context, cfg *engineconf.Config, argv []string) error {
	fmt.Print(engineconf.DefaultConfigFile)
	return nil
}
