// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

//go:build !windows

package main

import (
	"os"
	"syscall"
)

var rotateSignals = []os.Signal{syscall.SIGHUP, syscall.SIGUSR2}
