// Copyright (c) 2012 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package cryptstate

import (
	"fmt"
	"sort"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
	"github.com/ciphertalk/roomcrypt/pkg/blockcipher/magenta"
	"github.com/ciphertalk/roomcrypt/pkg/blockcipher/rc6"
	"github.com/ciphertalk/roomcrypt/pkg/blockcipher/serpent"
	"github.com/ciphertalk/roomcrypt/pkg/padding"
)

// CipherKind names a block cipher.
type CipherKind int

const (
	Serpent CipherKind = iota
	RC6
	Magenta
)

type cipherEntry struct {
	name string
	new  func(blockcipher.KeyLength) blockcipher.Cipher
}

var ciphers = map[CipherKind]cipherEntry{
	Serpent: {"SERPENT", func(kl blockcipher.KeyLength) blockcipher.Cipher { return serpent.New(kl) }},
	RC6:     {"RC6", func(kl blockcipher.KeyLength) blockcipher.Cipher { return rc6.New(kl) }},
	Magenta: {"MAGENTA", func(kl blockcipher.KeyLength) blockcipher.Cipher { return magenta.New(kl) }},
}

func (k CipherKind) String() string {
	if e, ok := ciphers[k]; ok {
		return e.name
	}
	return fmt.Sprintf("CipherKind(%d)", int(k))
}

// BlockSize returns the block size of the cipher, or 0 for an unknown kind.
func (k CipherKind) BlockSize() int {
	e, ok := ciphers[k]
	if !ok {
		return 0
	}
	return e.new(blockcipher.Key128).BlockSize()
}

// Mode names a mode of operation.
type Mode int

const (
	ECB Mode = iota
	CBC
	PCBC
	CFB
	OFB
	CTR
	RandomDelta
)

type modeEntry struct {
	name  string
	chain chainMode
}

var modes = map[Mode]modeEntry{
	ECB:         {"ECB", ecbMode{}},
	CBC:         {"CBC", cbcMode{}},
	PCBC:        {"PCBC", pcbcMode{}},
	CFB:         {"CFB", cfbMode{}},
	OFB:         {"OFB", ofbMode{}},
	CTR:         {"CTR", ctrMode{}},
	RandomDelta: {"RANDOM_DELTA", randomDeltaMode{}},
}

func (m Mode) String() string {
	if e, ok := modes[m]; ok {
		return e.name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseCipher maps a boundary name such as "SERPENT" to its CipherKind.
func ParseCipher(name string) (CipherKind, error) {
	for k, e := range ciphers {
		if e.name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
}

// ParseMode maps a boundary name such as "CBC" to its Mode.
func ParseMode(name string) (Mode, error) {
	for m, e := range modes {
		if e.name == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// ParsePadding maps a boundary name such as "PKCS7" to its padding kind.
func ParsePadding(name string) (padding.Kind, error) {
	k, err := padding.Parse(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPadding, name)
	}
	return k, nil
}

// SupportedCiphers returns the names of the supported block ciphers.
func SupportedCiphers() []string {
	names := make([]string, 0, len(ciphers))
	for _, e := range ciphers {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// SupportedModes returns the names of the supported modes of operation.
func SupportedModes() []string {
	names := make([]string, 0, len(modes))
	for _, e := range modes {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// SupportedPaddings returns the names of the supported padding schemes.
func SupportedPaddings() []string {
	var names []string
	for _, k := range padding.Kinds() {
		names = append(names, k.String())
	}
	sort.Strings(names)
	return names
}
