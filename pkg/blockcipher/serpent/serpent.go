// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package serpent implements the Serpent block cipher in its standard
// (non-bitsliced) form: an initial permutation, 32 substitution and linear
// transform rounds, and a final permutation.
package serpent

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
	"github.com/ciphertalk/roomcrypt/pkg/permute"
)

const (
	BlockSize = 16
	Rounds    = 32

	phi = 0x9e3779b9
)

// A block is 128 bits held as two little-endian 64-bit halves, so that
// bit k of the block is bit k%64 of half k/64.
type block [2]uint64

func loadBlock(b []byte) block {
	return block{binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:16])}
}

func (x block) store(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], x[0])
	binary.LittleEndian.PutUint64(b[8:16], x[1])
}

// substitute runs every nibble of x through box.
func substitute(x block, box *[16]byte) block {
	var out block
	for h := range x {
		for j := uint(0); j < 64; j += 4 {
			out[h] |= uint64(box[(x[h]>>j)&0xf]) << j
		}
	}
	return out
}

func transform(x block, cols *[128]block) block {
	var out block
	for k := 0; k < 128; k++ {
		if (x[k/64]>>uint(k%64))&1 == 1 {
			out[0] ^= cols[k][0]
			out[1] ^= cols[k][1]
		}
	}
	return out
}

// Cipher is a Serpent instance bound to a declared key length.
type Cipher struct {
	keyLength blockcipher.KeyLength
	keys      *[Rounds + 1]block
}

// New returns an unkeyed Serpent cipher expecting keys of length kl.
func New(kl blockcipher.KeyLength) *Cipher {
	return &Cipher{keyLength: kl}
}

func (c *Cipher) BlockSize() int {
	return BlockSize
}

// SetKey runs the key schedule and replaces any previous round keys.
func (c *Cipher) SetKey(key []byte) error {
	if err := blockcipher.CheckKey(c.keyLength, key); err != nil {
		return err
	}
	keys, err := expandKey(key)
	if err != nil {
		return err
	}
	c.keys = keys
	return nil
}

func (c *Cipher) Encrypt(dst, src []byte) error {
	if c.keys == nil {
		return blockcipher.ErrNotConfigured
	}
	if err := blockcipher.CheckBlock(BlockSize, dst, src); err != nil {
		return err
	}
	in, err := permute.Permute(src, ipTable[:], permute.LSBFirst, 0)
	if err != nil {
		return err
	}
	x := loadBlock(in)
	for r := 0; r < Rounds; r++ {
		x[0] ^= c.keys[r][0]
		x[1] ^= c.keys[r][1]
		x = substitute(x, &sbox[r%8])
		if r < Rounds-1 {
			x = transform(x, &ltCols)
		}
	}
	x[0] ^= c.keys[Rounds][0]
	x[1] ^= c.keys[Rounds][1]
	return finish(dst, x, fpTable[:])
}

func (c *Cipher) Decrypt(dst, src []byte) error {
	if c.keys == nil {
		return blockcipher.ErrNotConfigured
	}
	if err := blockcipher.CheckBlock(BlockSize, dst, src); err != nil {
		return err
	}
	in, err := permute.Permute(src, ipTable[:], permute.LSBFirst, 0)
	if err != nil {
		return err
	}
	x := loadBlock(in)
	x[0] ^= c.keys[Rounds][0]
	x[1] ^= c.keys[Rounds][1]
	for r := Rounds - 1; r >= 0; r-- {
		if r < Rounds-1 {
			x = transform(x, &ltInvCols)
		}
		x = substitute(x, &sboxInv[r%8])
		x[0] ^= c.keys[r][0]
		x[1] ^= c.keys[r][1]
	}
	return finish(dst, x, fpTable[:])
}

func finish(dst []byte, x block, table []int) error {
	var buf [BlockSize]byte
	x.store(buf[:])
	out, err := permute.Permute(buf[:], table, permute.LSBFirst, 0)
	if err != nil {
		return err
	}
	copy(dst, out)
	return nil
}

// expandKey derives the 33 round keys with the published reference
// schedule: short keys are padded with 0x01 then zeros, the prekey
// recurrence mixes in PHI^(i-8), and round keys start at w[8]. Keys
// expanded this way do not match the older Java client, which pads with
// 0x80, mixes PHI^i and starts at w[0]. Each round key is stored already
// passed through IP, ready to be mixed into the state.
func expandKey(key []byte) (*[Rounds + 1]block, error) {
	var padded [32]byte
	copy(padded[:], key)
	if len(key) < len(padded) {
		padded[len(key)] = 0x01
	}

	var w [8 + 4*(Rounds+1)]uint32
	for i := 0; i < 8; i++ {
		w[i] = binary.LittleEndian.Uint32(padded[4*i:])
	}
	for i := 8; i < len(w); i++ {
		x := w[i-8] ^ w[i-5] ^ w[i-3] ^ w[i-1] ^ phi ^ uint32(i-8)
		w[i] = bits.RotateLeft32(x, 11)
	}
	pre := w[8:]

	keys := new([Rounds + 1]block)
	var group [BlockSize]byte
	for g := range keys {
		for j := 0; j < 4; j++ {
			binary.LittleEndian.PutUint32(group[4*j:], pre[4*g+j])
		}
		hat, err := permute.Permute(group[:], ipTable[:], permute.LSBFirst, 0)
		if err != nil {
			return nil, fmt.Errorf("serpent: key schedule: %w", err)
		}
		keys[g] = substitute(loadBlock(hat), &sbox[(35-g)%8])
	}
	return keys, nil
}
