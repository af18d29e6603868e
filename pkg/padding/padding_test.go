// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package padding

import (
	"bytes"
	"errors"
	"testing"
)

const blockSize = 16

func data(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i%250) + 1
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	lengths := []int{0, blockSize - 1, blockSize, blockSize + 1, 3 * blockSize, 5*blockSize + 7}
	for _, kind := range []Kind{ANSIX923, PKCS7, ISO10126} {
		s, err := New(kind)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range lengths {
			in := data(n)
			padded, err := s.Pad(in, blockSize)
			if err != nil {
				t.Fatalf("%v: Pad(%d): %v", kind, n, err)
			}
			if len(padded)%blockSize != 0 || len(padded) <= n {
				t.Errorf("%v: Pad(%d) produced %d bytes", kind, n, len(padded))
			}
			out, err := s.Unpad(padded, blockSize)
			if err != nil {
				t.Fatalf("%v: Unpad(%d): %v", kind, n, err)
			}
			if !bytes.Equal(out, in) {
				t.Errorf("%v: round trip of %d bytes: got %x", kind, n, out)
			}
		}
	}
}

func TestZeros(t *testing.T) {
	s, _ := New(Zeros)

	padded, err := s.Pad([]byte{1, 2, 3}, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(padded, []byte{1, 2, 3, 0, 0, 0, 0, 0}) {
		t.Errorf("Got %x", padded)
	}

	aligned := data(8)
	padded, _ = s.Pad(aligned, 8)
	if !bytes.Equal(padded, aligned) {
		t.Errorf("aligned input changed: %x", padded)
	}

	out, err := s.Unpad([]byte{1, 2, 3, 0, 0, 0, 0, 0}, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{1, 2, 3}) {
		t.Errorf("Got %x", out)
	}

	// Trailing zero bytes of the data are indistinguishable from padding.
	out, _ = s.Unpad([]byte{1, 0, 0, 0, 0, 0, 0, 0}, 8)
	if !bytes.Equal(out, []byte{1}) {
		t.Errorf("Got %x", out)
	}
}

func TestPKCS7Layout(t *testing.T) {
	s, _ := New(PKCS7)
	padded, _ := s.Pad([]byte{0xaa}, 4)
	if !bytes.Equal(padded, []byte{0xaa, 3, 3, 3}) {
		t.Errorf("Got %x", padded)
	}
	padded, _ = s.Pad([]byte{1, 2, 3, 4}, 4)
	if !bytes.Equal(padded, []byte{1, 2, 3, 4, 4, 4, 4, 4}) {
		t.Errorf("Got %x", padded)
	}
}

func TestANSIX923Layout(t *testing.T) {
	s, _ := New(ANSIX923)
	padded, _ := s.Pad([]byte{0xaa}, 4)
	if !bytes.Equal(padded, []byte{0xaa, 0, 0, 3}) {
		t.Errorf("Got %x", padded)
	}
}

func TestCorruptPadding(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   []byte
	}{
		{"pkcs7 zero count", PKCS7, []byte{1, 2, 3, 0}},
		{"pkcs7 count too large", PKCS7, []byte{1, 2, 3, 5}},
		{"pkcs7 bad filler", PKCS7, []byte{1, 2, 9, 2}},
		{"pkcs7 empty", PKCS7, []byte{}},
		{"pkcs7 unaligned", PKCS7, []byte{1, 2, 1}},
		{"ansi zero count", ANSIX923, []byte{1, 2, 3, 0}},
		{"iso count too large", ISO10126, []byte{1, 2, 3, 9}},
		{"zeros unaligned", Zeros, []byte{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := New(tt.kind)
			if _, err := s.Unpad(tt.in, 4); !errors.Is(err, ErrCorruptPadding) {
				t.Errorf("Got %v, expected ErrCorruptPadding", err)
			}
		})
	}
}

func TestCountedIgnoresFiller(t *testing.T) {
	for _, kind := range []Kind{ANSIX923, ISO10126} {
		s, _ := New(kind)
		out, err := s.Unpad([]byte{7, 0xde, 0xad, 3}, 4)
		if err != nil {
			t.Fatalf("%v: %v", kind, err)
		}
		if !bytes.Equal(out, []byte{7}) {
			t.Errorf("%v: got %x", kind, out)
		}
	}
}

func TestParse(t *testing.T) {
	for _, k := range Kinds() {
		got, err := Parse(k.String())
		if err != nil || got != k {
			t.Errorf("Parse(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := Parse("PKCS5"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Got %v, expected ErrUnknownKind", err)
	}
}
