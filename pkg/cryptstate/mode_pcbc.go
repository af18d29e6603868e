// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import (
	"crypto/subtle"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
)

// pcbcMode chains each block through the XOR of the previous plaintext
// and ciphertext blocks.
type pcbcMode struct{}

func (pcbcMode) encrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	bs := b.BlockSize()
	for i := 0; i < len(src); i += bs {
		p, c := src[i:i+bs], dst[i:i+bs]
		subtle.XORBytes(state, state, p)
		if err := b.Encrypt(c, state); err != nil {
			return nil, err
		}
		subtle.XORBytes(state, p, c)
	}
	return state, nil
}

func (pcbcMode) decrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error) {
	bs := b.BlockSize()
	for i := 0; i < len(src); i += bs {
		c, p := src[i:i+bs], dst[i:i+bs]
		if err := b.Decrypt(p, c); err != nil {
			return nil, err
		}
		subtle.XORBytes(p, p, state)
		subtle.XORBytes(state, p, c)
	}
	return state, nil
}
