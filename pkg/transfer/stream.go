// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package transfer moves files between peers of a room as a sequence of
// encrypted chunks, and provides the streaming and text helpers the chunk
// protocol is built from.
package transfer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ciphertalk/roomcrypt/pkg/cryptstate"
)

// DefaultChunkSize is the plaintext size of every chunk but the last.
const DefaultChunkSize = 512 * 1024

var ErrChunkSize = errors.New("transfer: chunk size must be a positive multiple of the block size")

func checkChunkSize(ctx *cryptstate.Context, size int) error {
	if size <= 0 || size%ctx.BlockSize() != 0 {
		return fmt.Errorf("%w: %d", ErrChunkSize, size)
	}
	return nil
}

// eachChunk reads r in pieces of size bytes and calls fn for each one. The
// final piece, possibly shorter or empty, is flagged last. fn must not
// retain chunk.
func eachChunk(r io.Reader, size int, fn func(chunk []byte, last bool) error) error {
	cur, next := make([]byte, size), make([]byte, size)
	n, err := readChunk(r, cur)
	if err != nil {
		return err
	}
	for n == size {
		m, err := readChunk(r, next)
		if err != nil {
			return err
		}
		if m == 0 {
			break
		}
		if err := fn(cur[:n], false); err != nil {
			return err
		}
		cur, next = next, cur
		n = m
	}
	return fn(cur[:n], true)
}

func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

// EncryptStream pads and encrypts everything read from src as a single
// chain and writes the ciphertext to dst. The output equals
// ctx.Encrypt of the whole input.
func EncryptStream(ctx *cryptstate.Context, dst io.Writer, src io.Reader, chunkSize int) (written int64, err error) {
	if err := checkChunkSize(ctx, chunkSize); err != nil {
		return 0, err
	}
	var state []byte
	err = eachChunk(src, chunkSize, func(chunk []byte, last bool) error {
		if last {
			padded, err := ctx.AddPadding(chunk)
			if err != nil {
				return err
			}
			chunk = padded
		}
		out, next, err := ctx.Transform(chunk, state, true)
		if err != nil {
			return err
		}
		state = next
		n, err := dst.Write(out)
		written += int64(n)
		return err
	})
	return written, err
}

// DecryptStream reverses EncryptStream.
func DecryptStream(ctx *cryptstate.Context, dst io.Writer, src io.Reader, chunkSize int) (written int64, err error) {
	if err := checkChunkSize(ctx, chunkSize); err != nil {
		return 0, err
	}
	var state []byte
	err = eachChunk(src, chunkSize, func(chunk []byte, last bool) error {
		out, next, err := ctx.Transform(chunk, state, false)
		if err != nil {
			return err
		}
		state = next
		if last {
			if out, err = ctx.RemovePadding(out); err != nil {
				return err
			}
		}
		n, err := dst.Write(out)
		written += int64(n)
		return err
	})
	return written, err
}

// EncodeText encrypts a text message and returns it as standard base64.
func EncodeText(ctx *cryptstate.Context, text string) (string, error) {
	ct, err := ctx.Encrypt([]byte(text))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// DecodeText reverses EncodeText.
func DecodeText(ctx *cryptstate.Context, encoded string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	pt, err := ctx.Decrypt(ct)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
