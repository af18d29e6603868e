// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package padding implements block padding schemes.
package padding

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

var (
	ErrCorruptPadding   = errors.New("padding: corrupt padding")
	ErrInvalidBlockSize = errors.New("padding: invalid block size")
	ErrUnknownKind      = errors.New("padding: unknown padding kind")
)

// Kind names a padding scheme.
type Kind int

const (
	Zeros Kind = iota
	ANSIX923
	PKCS7
	ISO10126
)

var kindNames = map[Kind]string{
	Zeros:    "ZEROS",
	ANSIX923: "ANSI_X923",
	PKCS7:    "PKCS7",
	ISO10126: "ISO_10126",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every padding kind.
func Kinds() []Kind {
	return []Kind{Zeros, ANSIX923, PKCS7, ISO10126}
}

// Parse maps a boundary name such as "PKCS7" to its Kind.
func Parse(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// A Scheme extends data to a multiple of a block size and reverses it.
type Scheme interface {
	Pad(data []byte, blockSize int) ([]byte, error)
	Unpad(data []byte, blockSize int) ([]byte, error)
}

var schemes = map[Kind]Scheme{
	Zeros:    zeros{},
	ANSIX923: counted{filler: zeroFiller},
	PKCS7:    pkcs7{},
	ISO10126: counted{filler: randomFiller},
}

// New returns the Scheme registered for kind.
func New(kind Kind) (Scheme, error) {
	s, ok := schemes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	return s, nil
}

func checkBlockSize(blockSize int) error {
	if blockSize < 1 || blockSize > 255 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	return nil
}

// zeros appends zero bytes up to the next block boundary. Aligned input is
// left as is. Removal strips every trailing zero byte, so data that itself
// ends in zeros does not survive a round trip.
type zeros struct{}

func (zeros) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	n := (blockSize - len(data)%blockSize) % blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	return out, nil
}

func (zeros) Unpad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	if len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d not a multiple of %d", ErrCorruptPadding, len(data), blockSize)
	}
	end := len(data)
	for end > 0 && data[end-1] == 0 {
		end--
	}
	return append([]byte(nil), data[:end]...), nil
}

// padLength is the PKCS#7 style count: always between 1 and blockSize.
func padLength(dataLen, blockSize int) int {
	return blockSize - dataLen%blockSize
}

// countByte validates the trailing count byte shared by the counted
// schemes and returns it.
func countByte(data []byte, blockSize int) (int, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return 0, fmt.Errorf("%w: length %d not a positive multiple of %d", ErrCorruptPadding, len(data), blockSize)
	}
	n := int(data[len(data)-1])
	if n < 1 || n > blockSize {
		return 0, fmt.Errorf("%w: count byte %d", ErrCorruptPadding, n)
	}
	return n, nil
}

type pkcs7 struct{}

func (pkcs7) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	n := padLength(len(data), blockSize)
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out, nil
}

func (pkcs7) Unpad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	n, err := countByte(data, blockSize)
	if err != nil {
		return nil, err
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: filler byte %d, want %d", ErrCorruptPadding, b, n)
		}
	}
	return append([]byte(nil), data[:len(data)-n]...), nil
}

// counted covers ANSI X9.23 and ISO 10126: only the final byte carries
// the count and the filler before it is not checked on removal.
type counted struct {
	filler func([]byte) error
}

func zeroFiller(b []byte) error {
	for i := range b {
		b[i] = 0
	}
	return nil
}

func randomFiller(b []byte) error {
	_, err := io.ReadFull(rand.Reader, b)
	return err
}

func (c counted) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	n := padLength(len(data), blockSize)
	out := make([]byte, len(data)+n)
	copy(out, data)
	if err := c.filler(out[len(data) : len(out)-1]); err != nil {
		return nil, fmt.Errorf("padding: filler: %w", err)
	}
	out[len(out)-1] = byte(n)
	return out, nil
}

func (c counted) Unpad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	n, err := countByte(data, blockSize)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data[:len(data)-n]...), nil
}
