// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package logtarget implements a multiplexing logging target
package logtarget

import (
	"errors"
	"io"
	"os"
	"sync"
)

var ErrNoFile = errors.New("logtarget: no log file opened")

// LogTarget implements the io.Writer interface, allowing
// LogTarget to be registered with the regular Go log package.
// LogTarget copies its incoming writes to a console writer (stderr
// unless set otherwise) and, once opened, to an append-only log file.
type LogTarget struct {
	mu      sync.Mutex
	logfn   string
	file    *os.File
	console io.Writer
}

var Target LogTarget

// Write writes a log message to the console and the log file, if any.
func (target *LogTarget) Write(in []byte) (int, error) {
	target.mu.Lock()
	defer target.mu.Unlock()

	console := target.console
	if console == nil {
		console = os.Stderr
	}
	n, err := console.Write(in)
	if err != nil {
		return n, err
	}

	if target.file != nil {
		n, err = target.file.Write(in)
		if err != nil {
			return n, err
		}
	}

	return len(in), nil
}

// SetConsole replaces stderr as the console writer. A nil writer
// restores stderr.
func (target *LogTarget) SetConsole(w io.Writer) {
	target.mu.Lock()
	defer target.mu.Unlock()
	target.console = w
}

// OpenFile opens the main log file for writing.
// This method will open the file in append-only mode.
func (target *LogTarget) OpenFile(fn string) (err error) {
	target.mu.Lock()
	defer target.mu.Unlock()

	file, err := os.OpenFile(fn, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return err
	}
	if target.file != nil {
		target.file.Close()
	}
	target.logfn = fn
	target.file = file
	return nil
}

// Rotate rotates the current log file.
// This method holds a lock while rotating the log file,
// and all log writes will be held back until the rotation
// is complete.
func (target *LogTarget) Rotate() error {
	target.mu.Lock()
	defer target.mu.Unlock()

	if target.file == nil {
		return ErrNoFile
	}

	// Close the existing log file
	err := target.file.Close()
	if err != nil {
		return err
	}

	target.file, err = os.OpenFile(target.logfn, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return err
	}

	return nil
}

// Close closes the log file. Later writes go to the console only.
func (target *LogTarget) Close() error {
	target.mu.Lock()
	defer target.mu.Unlock()
	if target.file == nil {
		return nil
	}
	err := target.file.Close()
	target.file = nil
	return err
}
