// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package serpent

import (
	"encoding/binary"
	"math/bits"

	"github.com/ciphertalk/roomcrypt/pkg/permute"
)

// The eight 4-bit S-boxes.
var sbox = [8][16]byte{
	{3, 8, 15, 1, 10, 6, 5, 11, 14, 13, 4, 2, 7, 0, 9, 12},
	{15, 12, 2, 7, 9, 0, 5, 10, 1, 11, 14, 8, 6, 13, 3, 4},
	{8, 6, 7, 9, 3, 12, 10, 15, 13, 1, 14, 4, 0, 11, 5, 2},
	{0, 15, 11, 8, 12, 9, 6, 3, 13, 1, 2, 4, 10, 7, 5, 14},
	{1, 15, 8, 3, 12, 0, 11, 6, 2, 5, 4, 10, 9, 14, 7, 13},
	{15, 5, 2, 11, 4, 10, 9, 12, 0, 3, 14, 8, 13, 6, 7, 1},
	{7, 2, 12, 5, 8, 4, 6, 11, 14, 9, 1, 15, 13, 3, 10, 0},
	{1, 13, 15, 0, 14, 8, 2, 11, 7, 4, 12, 10, 9, 3, 5, 6},
}

var (
	sboxInv [8][16]byte

	// ipTable and fpTable are the initial and final permutations, in
	// little-endian bit numbering. fpTable is the inverse of ipTable.
	ipTable [128]int
	fpTable [128]int

	// ltCols[k] is the image of bit k under the linear transform as seen
	// through IP and FP. The transform of a block is the XOR of the
	// columns selected by its set bits.
	ltCols    [128]block
	ltInvCols [128]block
)

func init() {
	for b := range sbox {
		for x, y := range sbox[b] {
			sboxInv[b][y] = byte(x)
		}
	}
	for i := 0; i < 128; i++ {
		ipTable[i] = (i%4)*32 + i/4
		fpTable[i] = (i%32)*4 + i/32
	}
	for k := 0; k < 128; k++ {
		var unit block
		unit[k/64] = 1 << uint(k%64)
		ltCols[k] = throughWords(unit, linear)
		ltInvCols[k] = throughWords(unit, linearInv)
	}
}

// throughWords applies fn to the four 32-bit words underlying x.
func throughWords(x block, fn func(w *[4]uint32)) block {
	var buf [16]byte
	x.store(buf[:])
	words, err := permute.Permute(buf[:], fpTable[:], permute.LSBFirst, 0)
	if err != nil {
		panic(err)
	}
	var w [4]uint32
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(words[4*i:])
	}
	fn(&w)
	for i := range w {
		binary.LittleEndian.PutUint32(words[4*i:], w[i])
	}
	out, err := permute.Permute(words, ipTable[:], permute.LSBFirst, 0)
	if err != nil {
		panic(err)
	}
	return loadBlock(out)
}

func linear(w *[4]uint32) {
	w[0] = bits.RotateLeft32(w[0], 13)
	w[2] = bits.RotateLeft32(w[2], 3)
	w[1] ^= w[0] ^ w[2]
	w[3] ^= w[2] ^ (w[0] << 3)
	w[1] = bits.RotateLeft32(w[1], 1)
	w[3] = bits.RotateLeft32(w[3], 7)
	w[0] ^= w[1] ^ w[3]
	w[2] ^= w[3] ^ (w[1] << 7)
	w[0] = bits.RotateLeft32(w[0], 5)
	w[2] = bits.RotateLeft32(w[2], 22)
}

func linearInv(w *[4]uint32) {
	w[2] = bits.RotateLeft32(w[2], -22)
	w[0] = bits.RotateLeft32(w[0], -5)
	w[2] ^= w[3] ^ (w[1] << 7)
	w[0] ^= w[1] ^ w[3]
	w[3] = bits.RotateLeft32(w[3], -7)
	w[1] = bits.RotateLeft32(w[1], -1)
	w[3] ^= w[2] ^ (w[0] << 3)
	w[1] ^= w[0] ^ w[2]
	w[2] = bits.RotateLeft32(w[2], -3)
	w[0] = bits.RotateLeft32(w[0], -13)
}
