// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package rooms

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ciphertalk/roomcrypt/pkg/keyagreement"
	"github.com/ciphertalk/roomcrypt/pkg/roomtoken"
	"github.com/ciphertalk/roomcrypt/pkg/wire"
)

var ErrNoHandshake = errors.New("rooms: no handshake in progress for room")

// A Handshake runs the two-message room initialisation: the initiator
// offers a room token and its public component, the peer joins the room
// and answers with its own public component, and both sides store the
// resulting shared secret in their Registry.
type Handshake struct {
	reg  *Registry
	g, p string

	mu       sync.Mutex
	sessions map[string]*keyagreement.Session
}

// NewHandshake binds a Handshake to a registry and the group (g, p).
func NewHandshake(reg *Registry, g, p string) *Handshake {
	return &Handshake{
		reg:      reg,
		g:        g,
		p:        p,
		sessions: make(map[string]*keyagreement.Session),
	}
}

// session returns the key agreement session for a room, creating it on
// first use.
func (h *Handshake) session(id string) (*keyagreement.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok {
		return s, nil
	}
	s, err := keyagreement.New(h.g, h.p)
	if err != nil {
		return nil, err
	}
	h.sessions[id] = s
	return s, nil
}

func (h *Handshake) drop(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Offer builds the initiating message for a registered room.
func (h *Handshake) Offer(id, from, to string) (*wire.InitRoom, error) {
	room, err := h.reg.Lookup(id)
	if err != nil {
		return nil, err
	}
	token, err := room.Token()
	if err != nil {
		return nil, err
	}
	s, err := h.session(id)
	if err != nil {
		return nil, err
	}
	return &wire.InitRoom{
		From:            from,
		To:              to,
		Token:           token,
		PublicComponent: s.PublicComponent().String(),
		Type:            wire.MessageType_INIT_ROOM,
	}, nil
}

// Accept handles an offer on the receiving side. The room from the token
// is registered, or takes over the token's settings if already known. The
// shared secret is stored and the reply for the initiator is returned.
func (h *Handshake) Accept(msg *wire.InitRoom) (*wire.InitRoom, *Room, error) {
	room, _, err := h.reg.Apply(msg.Token)
	if errors.Is(err, ErrNoSuchRoom) {
		room, err = h.reg.Join(msg.Token)
		if errors.Is(err, ErrRoomExists) {
			room, _, err = h.reg.Apply(msg.Token)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	s, err := h.session(room.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := h.agree(room.ID, s, msg.PublicComponent); err != nil {
		return nil, nil, err
	}
	h.drop(room.ID)

	return &wire.InitRoom{
		From:            msg.To,
		To:              msg.From,
		Token:           msg.Token,
		PublicComponent: s.PublicComponent().String(),
		Type:            wire.MessageType_INIT_ROOM,
	}, room, nil
}

// Complete handles the reply to an earlier Offer.
func (h *Handshake) Complete(msg *wire.InitRoom) (*Room, error) {
	f, err := roomtoken.Decode(msg.Token)
	if err != nil {
		return nil, err
	}
	room, err := h.reg.Lookup(f.RoomID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	s, ok := h.sessions[room.ID]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoHandshake, room.ID)
	}
	if err := h.agree(room.ID, s, msg.PublicComponent); err != nil {
		return nil, err
	}
	h.drop(room.ID)
	return room, nil
}

// agree derives the shared secret outside the registry lock and stores
// it; if another derivation already stored a secret, that one is kept.
func (h *Handshake) agree(id string, s *keyagreement.Session, public string) error {
	peer, err := keyagreement.ParsePublicComponent(public)
	if err != nil {
		return err
	}
	secret, err := s.DeriveSharedSecret(peer)
	if err != nil {
		return err
	}
	if stored := h.reg.StoreSecret(id, secret); stored.Cmp(secret) != 0 {
		h.reg.Printf("Room %v already had a shared secret, keeping it", id)
	} else {
		h.reg.Printf("Agreed shared secret for room %v", id)
	}
	return nil
}
