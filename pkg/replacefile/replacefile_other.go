// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

//go:build !windows

package replacefile

import (
	"os"
)

// replace moves src over dst. On POSIX systems rename is atomic.
func replace(dst, src string) error {
	return os.Rename(src, dst)
}
