// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package blockcipher defines the contract shared by the block ciphers
// used for room encryption.
package blockcipher

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKeySize     = errors.New("blockcipher: invalid key size")
	ErrNotConfigured      = errors.New("blockcipher: key not set")
	ErrInvalidBlockLength = errors.New("blockcipher: invalid block length")
)

// A Cipher is a keyed permutation of fixed-size blocks.
//
// SetKey must succeed before Encrypt or Decrypt may be called. Encrypt and
// Decrypt operate on exactly one block; dst and src may overlap entirely.
type Cipher interface {
	SetKey(key []byte) error
	Encrypt(dst, src []byte) error
	Decrypt(dst, src []byte) error
	BlockSize() int
}

// KeyLength is the declared key size of a cipher instance.
type KeyLength int

const (
	Key128 KeyLength = iota
	Key192
	Key256
)

// Bytes returns the key size in bytes.
func (kl KeyLength) Bytes() int {
	switch kl {
	case Key128:
		return 16
	case Key192:
		return 24
	case Key256:
		return 32
	}
	return 0
}

// Bits returns the key size in bits.
func (kl KeyLength) Bits() int {
	return kl.Bytes() * 8
}

func (kl KeyLength) String() string {
	if kl.Bytes() == 0 {
		return fmt.Sprintf("KeyLength(%d)", int(kl))
	}
	return fmt.Sprintf("%d", kl.Bits())
}

// ParseKeyLength maps a bit count (128, 192 or 256) to a KeyLength.
func ParseKeyLength(bits int) (KeyLength, error) {
	switch bits {
	case 128:
		return Key128, nil
	case 192:
		return Key192, nil
	case 256:
		return Key256, nil
	}
	return 0, fmt.Errorf("%w: %d bits", ErrInvalidKeySize, bits)
}

// CheckKey verifies that key matches the declared length.
func CheckKey(kl KeyLength, key []byte) error {
	if kl.Bytes() == 0 || len(key) != kl.Bytes() {
		return fmt.Errorf("%w: got %d bytes, want %v bits", ErrInvalidKeySize, len(key), kl)
	}
	return nil
}

// CheckBlock verifies that dst and src are usable as a single block.
func CheckBlock(blockSize int, dst, src []byte) error {
	if len(src) != blockSize || len(dst) < blockSize {
		return fmt.Errorf("%w: src %d, dst %d, want %d", ErrInvalidBlockLength, len(src), len(dst), blockSize)
	}
	return nil
}
