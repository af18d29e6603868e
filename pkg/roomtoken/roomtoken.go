// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package roomtoken encodes the compact room descriptor exchanged during
// the room handshake.
//
// A token is the base64 (standard alphabet, padded) encoding of the six
// fields roomId, cipher, mode, padding, iv and keyBits joined by ".".
package roomtoken

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	Delimiter = "."
	numFields = 6
)

var (
	ErrMalformedToken = errors.New("roomtoken: malformed token")
	ErrInvalidField   = errors.New("roomtoken: field contains the delimiter")
)

// Fields are the textual room settings carried by a token. IV is the
// base64 text of the IV bytes; KeyBits is the decimal key length.
type Fields struct {
	RoomID  string
	Cipher  string
	Mode    string
	Padding string
	IV      string
	KeyBits string
}

func (f Fields) list() []string {
	return []string{f.RoomID, f.Cipher, f.Mode, f.Padding, f.IV, f.KeyBits}
}

// Encode builds the token for f.
func Encode(f Fields) (string, error) {
	parts := f.list()
	for _, p := range parts {
		if strings.Contains(p, Delimiter) {
			return "", fmt.Errorf("%w: %q", ErrInvalidField, p)
		}
	}
	joined := strings.Join(parts, Delimiter)
	return base64.StdEncoding.EncodeToString([]byte(joined)), nil
}

// Decode parses a token produced by Encode.
func Decode(token string) (Fields, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	parts := strings.Split(string(raw), Delimiter)
	if len(parts) != numFields {
		return Fields{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedToken, len(parts), numFields)
	}
	return Fields{
		RoomID:  parts[0],
		Cipher:  parts[1],
		Mode:    parts[2],
		Padding: parts[3],
		IV:      parts[4],
		KeyBits: parts[5],
	}, nil
}
