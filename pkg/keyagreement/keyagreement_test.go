// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package keyagreement

import (
	"bytes"
	"errors"
	"math/big"
	"sync"
	"testing"
)

// RFC 3526 group 14.
const modp2048 = "0xFFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A8AACAA68FFFFFFFFFFFFFFFF"

func TestSharedSecretAgreement(t *testing.T) {
	tests := []struct {
		name string
		g, p string
	}{
		{"small", "5", "23"},
		{"modp2048", "2", modp2048},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.g, tt.p)
			if err != nil {
				t.Fatal(err)
			}
			b, err := New(tt.g, tt.p)
			if err != nil {
				t.Fatal(err)
			}
			sa, err := a.DeriveSharedSecret(b.PublicComponent())
			if err != nil {
				t.Fatal(err)
			}
			sb, err := b.DeriveSharedSecret(a.PublicComponent())
			if err != nil {
				t.Fatal(err)
			}
			if sa.Cmp(sb) != 0 {
				t.Errorf("shared secrets differ: %v vs %v", sa, sb)
			}
		})
	}
}

func TestDeriveSharedSecretMemoized(t *testing.T) {
	a, _ := New("2", modp2048)
	b, _ := New("2", modp2048)
	c, _ := New("2", modp2048)

	first, err := a.DeriveSharedSecret(b.PublicComponent())
	if err != nil {
		t.Fatal(err)
	}
	again, err := a.DeriveSharedSecret(b.PublicComponent())
	if err != nil || again.Cmp(first) != 0 {
		t.Errorf("repeat derivation: %v, %v", again, err)
	}
	if _, err := a.DeriveSharedSecret(c.PublicComponent()); !errors.Is(err, ErrPeerMismatch) {
		t.Errorf("Got %v, expected ErrPeerMismatch", err)
	}
}

func TestDeriveSharedSecretConcurrent(t *testing.T) {
	a, _ := New("2", modp2048)
	b, _ := New("2", modp2048)
	peer := b.PublicComponent()

	var wg sync.WaitGroup
	results := make([]*big.Int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = a.DeriveSharedSecret(peer)
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		if r == nil || r.Cmp(results[0]) != 0 {
			t.Fatalf("concurrent derivations disagree")
		}
	}
}

func TestInvalidPublicComponent(t *testing.T) {
	a, _ := New("5", "23")
	for _, v := range []*big.Int{nil, big.NewInt(0), big.NewInt(-3), big.NewInt(23), big.NewInt(100)} {
		if _, err := a.DeriveSharedSecret(v); !errors.Is(err, ErrInvalidPublicComponent) {
			t.Errorf("peer %v: got %v", v, err)
		}
	}
}

func TestInvalidParameters(t *testing.T) {
	tests := []struct{ g, p string }{
		{"5", "not a number"},
		{"x", "23"},
		{"5", "2"},
		{"1", "23"},
		{"23", "23"},
	}
	for _, tt := range tests {
		if _, err := New(tt.g, tt.p); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("New(%q, %q): got %v", tt.g, tt.p, err)
		}
	}
}

func TestDeriveKey(t *testing.T) {
	shared := new(big.Int).SetBytes([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	tests := []struct {
		n    int
		want []byte
	}{
		{5, []byte{0x01, 0x02, 0x03, 0x04, 0x05}},
		{3, []byte{0x03, 0x04, 0x05}},
		{8, []byte{0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05}},
	}
	for _, tt := range tests {
		got := DeriveKey(shared, tt.n)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("DeriveKey(%d) = %x, expected %x", tt.n, got, tt.want)
		}
	}
	if got := DeriveKey(big.NewInt(0), 16); !bytes.Equal(got, make([]byte, 16)) {
		t.Errorf("zero secret: got %x", got)
	}
}

func TestParsePublicComponent(t *testing.T) {
	v, err := ParsePublicComponent("12345")
	if err != nil || v.Int64() != 12345 {
		t.Errorf("Got %v, %v", v, err)
	}
	if _, err := ParsePublicComponent("12x"); !errors.Is(err, ErrInvalidPublicComponent) {
		t.Errorf("Got %v", err)
	}
}
