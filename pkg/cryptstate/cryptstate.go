// Copyright (c) 2010-2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package cryptstate drives a block cipher through a mode of operation,
// carrying the chaining state explicitly between calls so that a logical
// stream can be processed one chunk at a time.
package cryptstate

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
	"github.com/ciphertalk/roomcrypt/pkg/padding"
)

var (
	ErrUnknownCipher  = errors.New("cryptstate: unknown cipher")
	ErrUnknownMode    = errors.New("cryptstate: unknown mode")
	ErrUnknownPadding = errors.New("cryptstate: unknown padding")
	ErrInvalidIV      = errors.New("cryptstate: invalid IV length")
	ErrUnalignedInput = errors.New("cryptstate: input is not a multiple of the block size")
	ErrInvalidState   = errors.New("cryptstate: invalid chain state length")
)

// Settings is the typed form of a room's crypto configuration.
type Settings struct {
	Cipher    CipherKind
	Mode      Mode
	Padding   padding.Kind
	KeyLength blockcipher.KeyLength
}

// ParseSettings converts boundary names into Settings.
func ParseSettings(cipherName, modeName, paddingName string, keyBits int) (Settings, error) {
	var s Settings
	var err error
	if s.Cipher, err = ParseCipher(cipherName); err != nil {
		return Settings{}, err
	}
	if s.Mode, err = ParseMode(modeName); err != nil {
		return Settings{}, err
	}
	if s.Padding, err = ParsePadding(paddingName); err != nil {
		return Settings{}, err
	}
	if s.KeyLength, err = blockcipher.ParseKeyLength(keyBits); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) String() string {
	return fmt.Sprintf("%v-%v/%v/%v", s.Cipher, s.KeyLength, s.Mode, s.Padding)
}

// chainMode processes a block-aligned run of blocks. state holds the
// value for the first block and may be modified; the returned slice is
// the value for the block following src.
type chainMode interface {
	encrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error)
	decrypt(b blockcipher.Cipher, dst, src, state []byte) ([]byte, error)
}

// A Context is a keyed cipher bound to a mode, a padding scheme and an IV.
//
// A Context holds no per-stream state; the chain state is passed in and
// returned by Transform. Calls for one stream must still be made in order.
type Context struct {
	settings Settings
	cipher   blockcipher.Cipher
	scheme   padding.Scheme
	chain    chainMode
	iv       []byte
}

// MakeContext builds a Context from boundary names. The key length selects
// the cipher's declared key size.
func MakeContext(cipherName, modeName, paddingName string, iv, key []byte) (*Context, error) {
	s, err := ParseSettings(cipherName, modeName, paddingName, len(key)*8)
	if err != nil {
		return nil, err
	}
	return New(s, iv, key)
}

// New builds a keyed Context. The IV must be one block long, except for
// ECB where it is ignored and may be nil.
func New(s Settings, iv, key []byte) (*Context, error) {
	ce, ok := ciphers[s.Cipher]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCipher, s.Cipher)
	}
	me, ok := modes[s.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, s.Mode)
	}
	scheme, err := padding.New(s.Padding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPadding, s.Padding)
	}

	b := ce.new(s.KeyLength)
	if err := b.SetKey(key); err != nil {
		return nil, err
	}
	if s.Mode != ECB || iv != nil {
		if len(iv) != b.BlockSize() {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIV, len(iv), b.BlockSize())
		}
	}

	return &Context{
		settings: s,
		cipher:   b,
		scheme:   scheme,
		chain:    me.chain,
		iv:       append([]byte(nil), iv...),
	}, nil
}

func (ctx *Context) Settings() Settings {
	return ctx.settings
}

func (ctx *Context) BlockSize() int {
	return ctx.cipher.BlockSize()
}

// IV returns a copy of the context's IV.
func (ctx *Context) IV() []byte {
	return append([]byte(nil), ctx.iv...)
}

// Transform encrypts or decrypts a block-aligned chunk. prev is the chain
// state returned by the previous call for the same stream, or nil at the
// start of a stream. The returned state must be passed to the next call.
// ECB always returns a nil state.
func (ctx *Context) Transform(chunk, prev []byte, encrypting bool) (out, next []byte, err error) {
	bs := ctx.cipher.BlockSize()
	if len(chunk)%bs != 0 {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrUnalignedInput, len(chunk))
	}

	var state []byte
	if ctx.settings.Mode != ECB {
		if prev == nil {
			state = append([]byte(nil), ctx.iv...)
		} else if len(prev) != bs {
			return nil, nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidState, len(prev), bs)
		} else {
			state = append([]byte(nil), prev...)
		}
	}

	out = make([]byte, len(chunk))
	if encrypting {
		next, err = ctx.chain.encrypt(ctx.cipher, out, chunk, state)
	} else {
		next, err = ctx.chain.decrypt(ctx.cipher, out, chunk, state)
	}
	if err != nil {
		return nil, nil, err
	}
	return out, next, nil
}

// AddPadding pads data to a multiple of the block size.
func (ctx *Context) AddPadding(data []byte) ([]byte, error) {
	return ctx.scheme.Pad(data, ctx.cipher.BlockSize())
}

// RemovePadding strips the padding added by AddPadding.
func (ctx *Context) RemovePadding(data []byte) ([]byte, error) {
	return ctx.scheme.Unpad(data, ctx.cipher.BlockSize())
}

// Encrypt pads and encrypts a complete message as a single stream.
func (ctx *Context) Encrypt(plaintext []byte) ([]byte, error) {
	padded, err := ctx.AddPadding(plaintext)
	if err != nil {
		return nil, err
	}
	out, _, err := ctx.Transform(padded, nil, true)
	return out, err
}

// Decrypt reverses Encrypt.
func (ctx *Context) Decrypt(ciphertext []byte) ([]byte, error) {
	out, _, err := ctx.Transform(ciphertext, nil, false)
	if err != nil {
		return nil, err
	}
	return ctx.RemovePadding(out)
}

// GenerateIV returns blockSize random bytes.
func GenerateIV(blockSize int) ([]byte, error) {
	iv := make([]byte, blockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	return iv, nil
}
