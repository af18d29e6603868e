// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package keyagreement implements finite-field Diffie-Hellman key
// agreement and the derivation of fixed-length cipher keys from the
// resulting shared secret.
package keyagreement

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"
)

// PrivateBits is the size of the random private exponent.
const PrivateBits = 256

var (
	ErrInvalidParameters      = errors.New("keyagreement: invalid group parameters")
	ErrInvalidPublicComponent = errors.New("keyagreement: peer public component out of range")
	ErrPeerMismatch           = errors.New("keyagreement: shared secret already derived for another peer")
)

var two = big.NewInt(2)

// A Session is one side of a key agreement in the group (g, p).
type Session struct {
	g, p    *big.Int
	private *big.Int
	public  *big.Int

	mu     sync.Mutex
	peer   *big.Int
	shared *big.Int
}

// New parses g and p (decimal, or 0x-prefixed hex) and draws a private
// exponent from crypto/rand.
func New(g, p string) (*Session, error) {
	return NewWithRand(g, p, rand.Reader)
}

// NewWithRand is New with an explicit randomness source.
func NewWithRand(g, p string, random io.Reader) (*Session, error) {
	gi, ok := new(big.Int).SetString(g, 0)
	if !ok {
		return nil, fmt.Errorf("%w: generator %q", ErrInvalidParameters, g)
	}
	pi, ok := new(big.Int).SetString(p, 0)
	if !ok {
		return nil, fmt.Errorf("%w: modulus %q", ErrInvalidParameters, p)
	}
	if pi.Cmp(two) <= 0 {
		return nil, fmt.Errorf("%w: modulus must exceed 2", ErrInvalidParameters)
	}
	if gi.Cmp(big.NewInt(1)) <= 0 || gi.Cmp(pi) >= 0 {
		return nil, fmt.Errorf("%w: generator must lie in (1, p)", ErrInvalidParameters)
	}

	limit := new(big.Int).Lsh(big.NewInt(1), PrivateBits)
	var x *big.Int
	for {
		var err error
		x, err = rand.Int(random, limit)
		if err != nil {
			return nil, fmt.Errorf("keyagreement: private exponent: %w", err)
		}
		if x.Cmp(two) >= 0 {
			break
		}
	}

	return &Session{
		g:       gi,
		p:       pi,
		private: x,
		public:  new(big.Int).Exp(gi, x, pi),
	}, nil
}

// PublicComponent returns g^x mod p.
func (s *Session) PublicComponent() *big.Int {
	return new(big.Int).Set(s.public)
}

// Modulus returns p.
func (s *Session) Modulus() *big.Int {
	return new(big.Int).Set(s.p)
}

// DeriveSharedSecret computes peer^x mod p. The first result is kept; a
// repeated call with the same peer returns it, a call with a different
// peer fails with ErrPeerMismatch.
func (s *Session) DeriveSharedSecret(peer *big.Int) (*big.Int, error) {
	if peer == nil || peer.Sign() <= 0 || peer.Cmp(s.p) >= 0 {
		return nil, ErrInvalidPublicComponent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shared != nil {
		if s.peer.Cmp(peer) != 0 {
			return nil, ErrPeerMismatch
		}
		return new(big.Int).Set(s.shared), nil
	}
	s.peer = new(big.Int).Set(peer)
	s.shared = new(big.Int).Exp(peer, s.private, s.p)
	return new(big.Int).Set(s.shared), nil
}

// DeriveKey returns exactly n bytes taken from the big-endian form of
// shared. A longer secret loses its most significant bytes; a shorter one
// is left-padded with zeros.
func DeriveKey(shared *big.Int, n int) []byte {
	if n <= 0 {
		return nil
	}
	key := make([]byte, n)
	if shared == nil {
		return key
	}
	b := shared.Bytes()
	if len(b) > n {
		b = b[len(b)-n:]
	}
	copy(key[n-len(b):], b)
	return key
}

// ParsePublicComponent parses a public component sent as text.
func ParsePublicComponent(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPublicComponent, s)
	}
	return v, nil
}
