// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import "github.com/ciphertalk/roomcrypt/pkg/blockcipher"

// randomDeltaMode is a counter mode whose counter advances by a fixed odd
// delta instead of one. It is not a standardised construction and has
// had no independent review; prefer CTR where interoperability allows.
type randomDeltaMode struct{}

// delta is the 128-bit golden ratio constant. Being odd, repeated
// addition visits every counter value before repeating.
var delta = []byte{
	0x9e, 0x37, 0x79, 0xb9, 0x7f, 0x4a, 0x7c, 0x15,
	0xf3, 0x9c, 0xc0, 0x60, 0x5c, 0xed, 0xc8, 0x35,
}

// deltaFor returns the low-order blockSize bytes of delta, forced odd.
func deltaFor(blockSize int) []byte {
	d := make([]byte, blockSize)
	if blockSize <= len(delta) {
		copy(d, delta[len(delta)-blockSize:])
	} else {
		copy(d[blockSize-len(delta):], delta)
	}
	d[blockSize-1] |= 1
	return d
}

func (randomDeltaMode) advance(blockSize int) func(state, ks, ct []byte) []byte {
	d := deltaFor(blockSize)
	return func(state, _, _ []byte) []byte {
		addBE(state, d)
		return state
	}
}

func (m randomDeltaMode) encrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	return keystream(b, dst, src, state, true, m.advance(b.BlockSize()))
}

func (m randomDeltaMode) decrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	return keystream(b, dst, src, state, false, m.advance(b.BlockSize()))
}
