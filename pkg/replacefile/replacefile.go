// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package replacefile writes files so that readers only ever see the old
// content or the complete new content. Data goes to a temporary file in
// the destination directory, which replaces the destination on Commit.
package replacefile

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrFinished = errors.New("replacefile: file already committed or aborted")

// A File is a pending replacement of the file at Path.
type File struct {
	Path string

	tmp  *os.File
	done bool
}

// Create starts a replacement of path. The temporary file lives next to
// path so that the final move stays on one file system.
func Create(path string) (*File, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"_")
	if err != nil {
		return nil, err
	}
	return &File{Path: path, tmp: tmp}, nil
}

func (f *File) Write(p []byte) (int, error) {
	if f.done {
		return 0, ErrFinished
	}
	return f.tmp.Write(p)
}

// Commit syncs the written data and moves it into place.
func (f *File) Commit() error {
	if f.done {
		return ErrFinished
	}
	f.done = true

	err := f.tmp.Sync()
	if err != nil {
		f.tmp.Close()
		os.Remove(f.tmp.Name())
		return err
	}
	err = f.tmp.Close()
	if err != nil {
		os.Remove(f.tmp.Name())
		return err
	}
	err = replace(f.Path, f.tmp.Name())
	if err != nil {
		os.Remove(f.tmp.Name())
		return err
	}
	return nil
}

// Abort discards the written data and leaves Path untouched.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	f.tmp.Close()
	return os.Remove(f.tmp.Name())
}

// Close commits the file, so that a File can be used as an
// io.WriteCloser.
func (f *File) Close() error {
	return f.Commit()
}
