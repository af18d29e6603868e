// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package rooms

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"sync"

	"github.com/ciphertalk/roomcrypt/pkg/cryptstate"
	"github.com/ciphertalk/roomcrypt/pkg/roomtoken"
)

// A Room is a conversation with agreed crypto settings. Settings change
// through UpdateSettings, which re-issues the token so that the peer can
// follow, or when Registry.Apply takes over a peer's re-issued token.
type Room struct {
	ID string

	mu       sync.RWMutex
	settings cryptstate.Settings
	iv       []byte
}

func newRoom(id string, s cryptstate.Settings, iv []byte) *Room {
	return &Room{ID: id, settings: s, iv: append([]byte(nil), iv...)}
}

// FromToken decodes a peer's token into a Room that has not been
// registered yet.
func FromToken(token string) (*Room, error) {
	f, err := roomtoken.Decode(token)
	if err != nil {
		return nil, err
	}
	return FromFields(f)
}

// FromFields converts decoded token fields into a Room.
func FromFields(f roomtoken.Fields) (*Room, error) {
	if f.RoomID == "" {
		return nil, fmt.Errorf("%w: empty room id", roomtoken.ErrMalformedToken)
	}
	bits, err := strconv.Atoi(f.KeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: key bits %q", roomtoken.ErrMalformedToken, f.KeyBits)
	}
	s, err := cryptstate.ParseSettings(f.Cipher, f.Mode, f.Padding, bits)
	if err != nil {
		return nil, err
	}
	iv, err := base64.StdEncoding.DecodeString(f.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", roomtoken.ErrMalformedToken, err)
	}
	return newRoom(f.RoomID, s, iv), nil
}

// Settings returns the room's settings and a copy of its IV.
func (r *Room) Settings() (cryptstate.Settings, []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, append([]byte(nil), r.iv...)
}

// Fields returns the token fields describing the room.
func (r *Room) Fields() roomtoken.Fields {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return roomtoken.Fields{
		RoomID:  r.ID,
		Cipher:  r.settings.Cipher.String(),
		Mode:    r.settings.Mode.String(),
		Padding: r.settings.Padding.String(),
		IV:      base64.StdEncoding.EncodeToString(r.iv),
		KeyBits: strconv.Itoa(r.settings.KeyLength.Bits()),
	}
}

// Token encodes the room's current settings.
func (r *Room) Token() (string, error) {
	return roomtoken.Encode(r.Fields())
}

// UpdateSettings replaces the room's settings and IV and returns the
// token to send to the peer. Contexts built before the change keep the
// old settings.
func (r *Room) UpdateSettings(s cryptstate.Settings, iv []byte) (string, error) {
	r.set(s, iv)
	return r.Token()
}

// set replaces the settings and IV and reports whether they differed.
func (r *Room) set(s cryptstate.Settings, iv []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := r.settings != s || !bytes.Equal(r.iv, iv)
	r.settings = s
	r.iv = append([]byte(nil), iv...)
	return changed
}

// context builds a Context for the room from a key of the right length.
func (r *Room) context(key []byte) (*cryptstate.Context, error) {
	s, iv := r.Settings()
	return cryptstate.New(s, iv, key)
}
