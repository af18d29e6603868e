// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package magenta implements the MAGENTA block cipher, a Feistel network
// whose round function is built from exponentiation in GF(2^8).
package magenta

import (
	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
)

const (
	BlockSize = 16
	halfSize  = BlockSize / 2

	// x^8 + x^6 + x^5 + x^2 + 1
	poly = 0x165
)

// f[x] = alpha^x in GF(2^8) for x < 255, and f[255] = 0.
var f [256]byte

func init() {
	v := 1
	for x := 0; x < 255; x++ {
		f[x] = byte(v)
		v <<= 1
		if v&0x100 != 0 {
			v ^= poly
		}
	}
	f[255] = 0
}

func a(x, y byte) byte {
	return f[x^f[y]]
}

// pi applies PE to the byte pairs (x[i], x[i+8]).
func pi(x *[16]byte) [16]byte {
	var out [16]byte
	for i := 0; i < 8; i++ {
		out[2*i] = a(x[i], x[i+8])
		out[2*i+1] = a(x[i+8], x[i])
	}
	return out
}

func t(x [16]byte) [16]byte {
	for i := 0; i < 4; i++ {
		x = pi(&x)
	}
	return x
}

// s lists the even-indexed bytes followed by the odd-indexed bytes.
func s(x [16]byte) [16]byte {
	var out [16]byte
	for i := 0; i < 8; i++ {
		out[i] = x[2*i]
		out[8+i] = x[2*i+1]
	}
	return out
}

func c(j int, w [16]byte) [16]byte {
	x := t(w)
	for ; j > 1; j-- {
		y := s(x)
		for i := range y {
			y[i] ^= w[i]
		}
		x = t(y)
	}
	return x
}

// roundFunc is the Feistel function F(x, k).
func roundFunc(x, k []byte) [halfSize]byte {
	var w [16]byte
	copy(w[:halfSize], x)
	copy(w[halfSize:], k)
	r := s(c(3, w))
	var out [halfSize]byte
	copy(out[:], r[:halfSize])
	return out
}

// Cipher is a MAGENTA instance bound to a declared key length.
type Cipher struct {
	keyLength blockcipher.KeyLength
	schedule  [][]byte
}

// New returns an unkeyed MAGENTA cipher expecting keys of length kl.
func New(kl blockcipher.KeyLength) *Cipher {
	return &Cipher{keyLength: kl}
}

func (m *Cipher) BlockSize() int {
	return BlockSize
}

// SetKey splits key into 64-bit subkeys K1..Kn and lays them out in the
// symmetric round order: K1K1K2K2K1K1 for 128-bit keys, K1K2K3K3K2K1 for
// 192-bit keys and K1K2K3K4K4K3K2K1 for 256-bit keys.
func (m *Cipher) SetKey(key []byte) error {
	if err := blockcipher.CheckKey(m.keyLength, key); err != nil {
		return err
	}
	k := make([][]byte, len(key)/halfSize)
	for i := range k {
		k[i] = append([]byte(nil), key[i*halfSize:(i+1)*halfSize]...)
	}
	var order []int
	switch len(k) {
	case 2:
		order = []int{0, 0, 1, 1, 0, 0}
	case 3:
		order = []int{0, 1, 2, 2, 1, 0}
	case 4:
		order = []int{0, 1, 2, 3, 3, 2, 1, 0}
	}
	schedule := make([][]byte, len(order))
	for i, idx := range order {
		schedule[i] = k[idx]
	}
	m.schedule = schedule
	return nil
}

func (m *Cipher) Encrypt(dst, src []byte) error {
	if m.schedule == nil {
		return blockcipher.ErrNotConfigured
	}
	if err := blockcipher.CheckBlock(BlockSize, dst, src); err != nil {
		return err
	}
	var x [BlockSize]byte
	copy(x[:], src)
	m.feistel(&x)
	copy(dst, x[:])
	return nil
}

// Decrypt relies on the round keys being palindromic: swapping the halves
// before and after the forward network inverts it.
func (m *Cipher) Decrypt(dst, src []byte) error {
	if m.schedule == nil {
		return blockcipher.ErrNotConfigured
	}
	if err := blockcipher.CheckBlock(BlockSize, dst, src); err != nil {
		return err
	}
	var x [BlockSize]byte
	copy(x[:halfSize], src[halfSize:])
	copy(x[halfSize:], src[:halfSize])
	m.feistel(&x)
	copy(dst[:halfSize], x[halfSize:])
	copy(dst[halfSize:BlockSize], x[:halfSize])
	return nil
}

func (m *Cipher) feistel(x *[BlockSize]byte) {
	for _, k := range m.schedule {
		fx := roundFunc(x[halfSize:], k)
		var next [BlockSize]byte
		copy(next[:halfSize], x[halfSize:])
		for i := 0; i < halfSize; i++ {
			next[halfSize+i] = x[i] ^ fx[i]
		}
		*x = next
	}
}
