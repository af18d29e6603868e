// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package rooms keeps track of the rooms a peer takes part in, together
// with the Diffie-Hellman secret agreed for each of them.
package rooms

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ciphertalk/roomcrypt/pkg/cryptstate"
	"github.com/ciphertalk/roomcrypt/pkg/keyagreement"
)

var (
	ErrRoomExists = errors.New("rooms: room already registered")
	ErrNoSuchRoom = errors.New("rooms: no such room")
	ErrNoSecret   = errors.New("rooms: no shared secret for room")
)

// A Registry owns a set of rooms and their shared secrets. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	secrets map[string]*big.Int

	*log.Logger
}

// New creates an empty Registry. A nil logger discards log output.
func New(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Registry{
		rooms:   make(map[string]*Room),
		secrets: make(map[string]*big.Int),
		Logger:  logger,
	}
}

// Create registers a new room with a fresh id and IV and returns it
// together with its token.
func (reg *Registry) Create(s cryptstate.Settings) (*Room, string, error) {
	if s.Cipher.BlockSize() == 0 {
		return nil, "", fmt.Errorf("%w: %v", cryptstate.ErrUnknownCipher, s.Cipher)
	}
	iv, err := cryptstate.GenerateIV(s.Cipher.BlockSize())
	if err != nil {
		return nil, "", err
	}
	room := newRoom(uuid.NewString(), s, iv)
	token, err := room.Token()
	if err != nil {
		return nil, "", err
	}
	if err := reg.Insert(room); err != nil {
		return nil, "", err
	}
	reg.Printf("Created room %v (%v)", room.ID, s)
	return room, token, nil
}

// Join registers the room described by a peer's token.
func (reg *Registry) Join(token string) (*Room, error) {
	room, err := FromToken(token)
	if err != nil {
		return nil, err
	}
	if err := reg.Insert(room); err != nil {
		return nil, err
	}
	s, _ := room.Settings()
	reg.Printf("Joined room %v (%v)", room.ID, s)
	return room, nil
}

// Apply brings an already registered room in line with a token re-issued
// by the peer after a settings change. The shared secret is kept. It
// reports whether the settings or IV changed; an unknown room yields
// ErrNoSuchRoom.
func (reg *Registry) Apply(token string) (*Room, bool, error) {
	peer, err := FromToken(token)
	if err != nil {
		return nil, false, err
	}
	room, err := reg.Lookup(peer.ID)
	if err != nil {
		return nil, false, err
	}
	s, iv := peer.Settings()
	changed := room.set(s, iv)
	if changed {
		reg.Printf("Room %v now uses %v", room.ID, s)
	}
	return room, changed, nil
}

// Insert adds room to the registry.
func (reg *Registry) Insert(room *Room) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.rooms[room.ID]; exists {
		return fmt.Errorf("%w: %v", ErrRoomExists, room.ID)
	}
	reg.rooms[room.ID] = room
	return nil
}

// Lookup returns the room registered under id.
func (reg *Registry) Lookup(id string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoSuchRoom, id)
	}
	return room, nil
}

// Evict removes a room and forgets its shared secret.
func (reg *Registry) Evict(id string) {
	reg.mu.Lock()
	_, existed := reg.rooms[id]
	delete(reg.rooms, id)
	delete(reg.secrets, id)
	reg.mu.Unlock()
	if existed {
		reg.Printf("Evicted room %v", id)
	}
}

// IDs returns the ids of all registered rooms in sorted order.
func (reg *Registry) IDs() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	ids := make([]string, 0, len(reg.rooms))
	for id := range reg.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StoreSecret records the shared secret for a room unless one is already
// known. It returns the secret in effect afterwards, so that a concurrent
// duplicate derivation is discarded rather than overwriting the first.
func (reg *Registry) StoreSecret(id string, secret *big.Int) *big.Int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if cur, ok := reg.secrets[id]; ok {
		return new(big.Int).Set(cur)
	}
	reg.secrets[id] = new(big.Int).Set(secret)
	return new(big.Int).Set(secret)
}

// Secret returns the shared secret of a room, if one is known.
func (reg *Registry) Secret(id string) (*big.Int, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, ok := reg.secrets[id]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(s), true
}

// key returns the room and the cipher key derived from its secret.
func (reg *Registry) key(id string) (*Room, []byte, error) {
	room, err := reg.Lookup(id)
	if err != nil {
		return nil, nil, err
	}
	secret, ok := reg.Secret(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoSecret, id)
	}
	s, _ := room.Settings()
	return room, keyagreement.DeriveKey(secret, s.KeyLength.Bytes()), nil
}

// Context builds a fresh Context for a room from its current settings and
// shared secret. Each logical stream should use its own Context.
func (reg *Registry) Context(id string) (*cryptstate.Context, error) {
	room, key, err := reg.key(id)
	if err != nil {
		return nil, err
	}
	return room.context(key)
}

// Seal encrypts a short message for a room in one call.
func (reg *Registry) Seal(id string, plaintext []byte) ([]byte, error) {
	ctx, err := reg.Context(id)
	if err != nil {
		return nil, err
	}
	return ctx.Encrypt(plaintext)
}

// Open decrypts a message produced by Seal.
func (reg *Registry) Open(id string, ciphertext []byte) ([]byte, error) {
	ctx, err := reg.Context(id)
	if err != nil {
		return nil, err
	}
	return ctx.Decrypt(ciphertext)
}

// SafetyNumber is a short fingerprint of a room's cipher key that both
// peers can compare out of band, formatted as upper-case hex in groups
// of four.
func (reg *Registry) SafetyNumber(id string) (string, error) {
	_, key, err := reg.key(id)
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(key)
	digits := hex.EncodeToString(sum[:16])

	var formatted strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			formatted.WriteRune(' ')
		}
		formatted.WriteRune(r)
	}
	return cases.Upper(language.English).String(formatted.String()), nil
}
