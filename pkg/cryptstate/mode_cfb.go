// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import "github.com/ciphertalk/roomcrypt/pkg/blockcipher"

// cfbMode feeds the previous ciphertext block through the cipher. The
// cipher runs forward in both directions.
type cfbMode struct{}

func cfbAdvance(state, _, ct []byte) []byte {
	copy(state, ct)
	return state
}

func (cfbMode) encrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	return keystream(b, dst, src, state, true, cfbAdvance)
}

func (cfbMode) decrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	return keystream(b, dst, src, state, false, cfbAdvance)
}
