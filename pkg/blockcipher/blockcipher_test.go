// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package blockcipher

import (
	"errors"
	"testing"
)

func TestParseKeyLength(t *testing.T) {
	tests := []struct {
		bits  int
		want  KeyLength
		bytes int
	}{
		{128, Key128, 16},
		{192, Key192, 24},
		{256, Key256, 32},
	}
	for _, tt := range tests {
		kl, err := ParseKeyLength(tt.bits)
		if err != nil {
			t.Fatalf("ParseKeyLength(%d): %v", tt.bits, err)
		}
		if kl != tt.want || kl.Bytes() != tt.bytes || kl.Bits() != tt.bits {
			t.Errorf("ParseKeyLength(%d) = %v (%d bytes)", tt.bits, kl, kl.Bytes())
		}
	}

	if _, err := ParseKeyLength(64); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("Got %v, expected ErrInvalidKeySize", err)
	}
}

func TestCheckKey(t *testing.T) {
	if err := CheckKey(Key192, make([]byte, 24)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckKey(Key192, make([]byte, 32)); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("Got %v, expected ErrInvalidKeySize", err)
	}
	if err := CheckKey(KeyLength(9), nil); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("Got %v, expected ErrInvalidKeySize", err)
	}
}

func TestCheckBlock(t *testing.T) {
	if err := CheckBlock(16, make([]byte, 16), make([]byte, 16)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckBlock(16, make([]byte, 16), make([]byte, 15)); !errors.Is(err, ErrInvalidBlockLength) {
		t.Errorf("Got %v, expected ErrInvalidBlockLength", err)
	}
	if err := CheckBlock(16, make([]byte, 8), make([]byte, 16)); !errors.Is(err, ErrInvalidBlockLength) {
		t.Errorf("Got %v, expected ErrInvalidBlockLength", err)
	}
}
