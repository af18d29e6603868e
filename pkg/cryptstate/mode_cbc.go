// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import (
	"crypto/subtle"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
)

// cbcMode chains each block through the previous ciphertext block.
type cbcMode struct{}

func (cbcMode) encrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	bs := b.BlockSize()
	for i := 0; i < len(src); i += bs {
		subtle.XORBytes(state, state, src[i:i+bs])
		if err := b.Encrypt(dst[i:i+bs], state); err != nil {
			return nil, err
		}
		copy(state, dst[i:i+bs])
	}
	return state, nil
}

func (cbcMode) decrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	bs := b.BlockSize()
	for i := 0; i < len(src); i += bs {
		if err := b.Decrypt(dst[i:i+bs], src[i:i+bs]); err != nil {
			return nil, err
		}
		subtle.XORBytes(dst[i:i+bs], dst[i:i+bs], state)
		copy(state, src[i:i+bs])
	}
	return state, nil
}
