// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import "github.com/ciphertalk/roomcrypt/pkg/blockcipher"

// ofbMode feeds the keystream back into the cipher; the data never
// influences the state.
type ofbMode struct{}

func ofbAdvance(state, ks, _ []byte) []byte {
	copy(state, ks)
	return state
}

func (ofbMode) encrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	return keystream(b, dst, src, state, true, ofbAdvance)
}

func (ofbMode) decrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	return keystream(b, dst, src, state, false, ofbAdvance)
}
