// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package rc6 implements the RC6 block cipher with 32-bit words and
// 20 rounds (RC6-32/20/b).
package rc6

import (
	"encoding/binary"
	"math/bits"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
)

const (
	BlockSize = 16
	Rounds    = 20

	p32 = 0xb7e15163
	q32 = 0x9e3779b9

	scheduleLen = 2*Rounds + 4
)

// Cipher is an RC6 instance bound to a declared key length.
type Cipher struct {
	keyLength blockcipher.KeyLength
	s         []uint32
}

// New returns an unkeyed RC6 cipher expecting keys of length kl.
func New(kl blockcipher.KeyLength) *Cipher {
	return &Cipher{keyLength: kl}
}

func (c *Cipher) BlockSize() int {
	return BlockSize
}

// SetKey expands key into the 2r+4 round words.
func (c *Cipher) SetKey(key []byte) error {
	if err := blockcipher.CheckKey(c.keyLength, key); err != nil {
		return err
	}

	l := make([]uint32, len(key)/4)
	for i := range l {
		l[i] = binary.LittleEndian.Uint32(key[4*i:])
	}
	s := make([]uint32, scheduleLen)
	s[0] = p32
	for i := 1; i < len(s); i++ {
		s[i] = s[i-1] + q32
	}

	passes := 3 * scheduleLen
	if len(l) > scheduleLen {
		passes = 3 * len(l)
	}
	var a, b uint32
	i, j := 0, 0
	for k := 0; k < passes; k++ {
		s[i] = bits.RotateLeft32(s[i]+a+b, 3)
		a = s[i]
		l[j] = bits.RotateLeft32(l[j]+a+b, int((a+b)&31))
		b = l[j]
		i = (i + 1) % len(s)
		j = (j + 1) % len(l)
	}
	c.s = s
	return nil
}

func (c *Cipher) Encrypt(dst, src []byte) error {
	if c.s == nil {
		return blockcipher.ErrNotConfigured
	}
	if err := blockcipher.CheckBlock(BlockSize, dst, src); err != nil {
		return err
	}
	a := binary.LittleEndian.Uint32(src[0:])
	b := binary.LittleEndian.Uint32(src[4:])
	cc := binary.LittleEndian.Uint32(src[8:])
	d := binary.LittleEndian.Uint32(src[12:])

	b += c.s[0]
	d += c.s[1]
	for i := 1; i <= Rounds; i++ {
		t := bits.RotateLeft32(b*(2*b+1), 5)
		u := bits.RotateLeft32(d*(2*d+1), 5)
		a = bits.RotateLeft32(a^t, int(u&31)) + c.s[2*i]
		cc = bits.RotateLeft32(cc^u, int(t&31)) + c.s[2*i+1]
		a, b, cc, d = b, cc, d, a
	}
	a += c.s[2*Rounds+2]
	cc += c.s[2*Rounds+3]

	binary.LittleEndian.PutUint32(dst[0:], a)
	binary.LittleEndian.PutUint32(dst[4:], b)
	binary.LittleEndian.PutUint32(dst[8:], cc)
	binary.LittleEndian.PutUint32(dst[12:], d)
	return nil
}

func (c *Cipher) Decrypt(dst, src []byte) error {
	if c.s == nil {
		return blockcipher.ErrNotConfigured
	}
	if err := blockcipher.CheckBlock(BlockSize, dst, src); err != nil {
		return err
	}
	a := binary.LittleEndian.Uint32(src[0:])
	b := binary.LittleEndian.Uint32(src[4:])
	cc := binary.LittleEndian.Uint32(src[8:])
	d := binary.LittleEndian.Uint32(src[12:])

	cc -= c.s[2*Rounds+3]
	a -= c.s[2*Rounds+2]
	for i := Rounds; i >= 1; i-- {
		a, b, cc, d = d, a, b, cc
		u := bits.RotateLeft32(d*(2*d+1), 5)
		t := bits.RotateLeft32(b*(2*b+1), 5)
		cc = bits.RotateLeft32(cc-c.s[2*i+1], -int(t&31)) ^ u
		a = bits.RotateLeft32(a-c.s[2*i], -int(u&31)) ^ t
	}
	d -= c.s[1]
	b -= c.s[0]

	binary.LittleEndian.PutUint32(dst[0:], a)
	binary.LittleEndian.PutUint32(dst[4:], b)
	binary.LittleEndian.PutUint32(dst[8:], cc)
	binary.LittleEndian.PutUint32(dst[12:], d)
	return nil
}
