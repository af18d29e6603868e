// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package logtarget

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleOnly(t *testing.T) {
	var target LogTarget
	var console bytes.Buffer
	target.SetConsole(&console)

	logger := log.New(&target, "[R] ", 0)
	logger.Printf("no file yet")
	if console.String() != "[R] no file yet\n" {
		t.Errorf("Got %q", console.String())
	}
	if err := target.Rotate(); !errors.Is(err, ErrNoFile) {
		t.Errorf("Got %v, expected ErrNoFile", err)
	}
}

func TestFileAndRotate(t *testing.T) {
	var target LogTarget
	target.SetConsole(new(bytes.Buffer))
	defer target.Close()

	fn := filepath.Join(t.TempDir(), "roomcrypt.log")
	if err := target.OpenFile(fn); err != nil {
		t.Fatal(err)
	}
	logger := log.New(&target, "", 0)
	logger.Printf("before rotate")

	rotated := fn + ".1"
	if err := os.Rename(fn, rotated); err != nil {
		t.Fatal(err)
	}
	if err := target.Rotate(); err != nil {
		t.Fatal(err)
	}
	logger.Printf("after rotate")

	old, _ := os.ReadFile(rotated)
	cur, _ := os.ReadFile(fn)
	if strings.TrimSpace(string(old)) != "before rotate" {
		t.Errorf("rotated file holds %q", old)
	}
	if strings.TrimSpace(string(cur)) != "after rotate" {
		t.Errorf("new file holds %q", cur)
	}
}
