// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package permute implements table-driven bit permutations of byte buffers.
package permute

import (
	"errors"
	"fmt"
)

// BitOrder selects how bit positions map onto the bits of a byte.
type BitOrder int

const (
	// MSBFirst numbers bit 0 as the most significant bit of byte 0.
	MSBFirst BitOrder = iota
	// LSBFirst numbers bit 0 as the least significant bit of byte 0.
	LSBFirst
)

func (o BitOrder) String() string {
	switch o {
	case MSBFirst:
		return "MSB"
	case LSBFirst:
		return "LSB"
	}
	return fmt.Sprintf("BitOrder(%d)", int(o))
}

var ErrIndexOutOfRange = errors.New("permute: table index out of range")

// Permute builds a new buffer whose bit i is the bit of input at position
// table[i]-base. The result holds ceil(len(table)/8) bytes; unused trailing
// bits of the last byte are zero. The same bit order is used to read the
// source and to place the result.
func Permute(input []byte, table []int, order BitOrder, base int) ([]byte, error) {
	nbits := len(input) * 8
	out := make([]byte, (len(table)+7)/8)
	for i, t := range table {
		pos := t - base
		if pos < 0 || pos >= nbits {
			return nil, fmt.Errorf("%w: entry %d refers to bit %d of %d", ErrIndexOutOfRange, i, pos, nbits)
		}
		if order == LSBFirst {
			bit := (input[pos/8] >> uint(pos%8)) & 1
			out[i/8] |= bit << uint(i%8)
		} else {
			bit := (input[pos/8] >> uint(7-pos%8)) & 1
			out[i/8] |= bit << uint(7-i%8)
		}
	}
	return out, nil
}

// Identity returns the table 0+base .. n-1+base.
func Identity(n, base int) []int {
	t := make([]int, n)
	for i := range t {
		t[i] = i + base
	}
	return t
}

// Invert returns the inverse of a base-0 permutation table covering
// exactly len(table) bits.
func Invert(table []int) []int {
	inv := make([]int, len(table))
	for i, t := range table {
		inv[t] = i
	}
	return inv
}
