// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import (
	"crypto/subtle"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
)

// keystream runs the shared loop of the feedback modes: each block is
// XORed with E(state), after which advance computes the next state from
// the keystream block and the ciphertext block.
func keystream(b blockcipher.Cipher, dst, src, state []byte, encrypting bool, advance func(state, ks, ct []byte) []byte) ([]byte, error) {
	bs := b.BlockSize()
	ks := make([]byte, bs)
	for i := 0; i < len(src); i += bs {
		if err := b.Encrypt(ks, state); err != nil {
			return nil, err
		}
		subtle.XORBytes(dst[i:i+bs], src[i:i+bs], ks)
		ct := src[i : i+bs]
		if encrypting {
			ct = dst[i : i+bs]
		}
		state = advance(state, ks, ct)
	}
	return state, nil
}

// incrementBE adds one to x as a big-endian integer, wrapping on overflow.
func incrementBE(x []byte) {
	for i := len(x) - 1; i >= 0; i-- {
		x[i]++
		if x[i] != 0 {
			return
		}
	}
}

// addBE adds y to x in place as big-endian integers of equal length,
// modulo 2^(8*len(x)).
func addBE(x, y []byte) {
	var carry uint16
	for i := len(x) - 1; i >= 0; i-- {
		sum := uint16(x[i]) + uint16(y[i]) + carry
		x[i] = byte(sum)
		carry = sum >> 8
	}
}
