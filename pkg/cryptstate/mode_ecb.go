// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import "github.com/ciphertalk/roomcrypt/pkg/blockcipher"

// ecbMode encrypts every block independently and carries no state.
type ecbMode struct{}

func (ecbMode) encrypt(b blockcipher.Cipher, dst, src, _ []byte) ([]byte, error) {
	bs := b.BlockSize()
	for i := 0; i < len(src); i += bs {
		if err := b.Encrypt(dst[i:i+bs], src[i:i+bs]); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (ecbMode) decrypt(b blockcipher.Cipher, dst, src, _ []byte) ([]byte, error) {
	bs := b.BlockSize()
	for i := 0; i < len(src); i += bs {
		if err := b.Decrypt(dst[i:i+bs], src[i:i+bs]); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
