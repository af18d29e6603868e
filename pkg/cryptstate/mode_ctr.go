// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import "github.com/ciphertalk/roomcrypt/pkg/blockcipher"

// ctrMode encrypts a big-endian block counter seeded from the IV.
type ctrMode struct{}

func ctrAdvance(state, _, _ []byte) []byte {
	incrementBE(state)
	return state
}

func (ctrMode) encrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	return keystream(b, dst, src, state, true, ctrAdvance)
}

func (ctrMode) decrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	return keystream(b, dst, src, state, false, ctrAdvance)
}
