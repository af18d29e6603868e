// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package replacefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCommitReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	f, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte("new content"))

	if buf, _ := os.ReadFile(path); string(buf) != "old" {
		t.Errorf("destination changed before commit: %q", buf)
	}
	if err := f.Commit(); err != nil {
		t.Fatal(err)
	}
	if buf, _ := os.ReadFile(path); string(buf) != "new content" {
		t.Errorf("Got %q after commit", buf)
	}
	if _, err := f.Write([]byte("x")); !errors.Is(err, ErrFinished) {
		t.Errorf("Got %v, expected ErrFinished", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %v", entries)
	}
}

func TestAbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.bin")

	f, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte("half a file"))
	if err := f.Abort(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("destination exists after abort")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temporary file left behind: %v", entries)
	}
	if err := f.Close(); !errors.Is(err, ErrFinished) {
		t.Errorf("Got %v, expected ErrFinished", err)
	}
}
