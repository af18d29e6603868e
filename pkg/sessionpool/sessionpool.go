// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package sessionpool implements a reuse pool for stream IDs, such as the
// IDs that tag the chunks of one file transfer on a shared connection.
package sessionpool

import (
	"errors"
	"math"
	"sync"
)

var ErrDepleted = errors.New("sessionpool: pool depleted")

// A SessionPool is a pool for stream IDs.
// IDs are re-used in MRU order. ID 0 is never handed out, so that it can
// mean "no stream" on the wire.
type SessionPool struct {
	mutex  sync.Mutex
	used   map[uint32]bool
	unused []uint32
	cur    uint32
	max    uint32
}

// New creates a SessionPool handing out IDs up to math.MaxUint32.
func New() *SessionPool {
	return NewWithLimit(math.MaxUint32)
}

// NewWithLimit creates a SessionPool whose IDs never exceed max.
func NewWithLimit(max uint32) *SessionPool {
	return &SessionPool{max: max}
}

// EnableUseTracking makes the pool remember every ID it returns.
// Reclaiming an ID that is not in use then panics, which catches
// double-reclaims in callers.
func (pool *SessionPool) EnableUseTracking() {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	if len(pool.unused) != 0 || pool.cur != 0 {
		panic("Attempt to enable use tracking on an existing SessionPool.")
	}
	pool.used = make(map[uint32]bool)
}

// Get returns an unused ID. It must be handed back with Reclaim.
func (pool *SessionPool) Get() (id uint32, err error) {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()

	if length := len(pool.unused); length > 0 {
		id = pool.unused[length-1]
		pool.unused = pool.unused[:length-1]
	} else {
		if pool.cur == pool.max {
			return 0, ErrDepleted
		}
		pool.cur++
		id = pool.cur
	}

	if pool.used != nil {
		pool.used[id] = true
	}
	return id, nil
}

// Reclaim returns an ID to the pool.
func (pool *SessionPool) Reclaim(id uint32) {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()

	if pool.used != nil {
		if !pool.used[id] {
			panic("Attempt to reclaim invalid session ID")
		}
		delete(pool.used, id)
	}

	pool.unused = append(pool.unused, id)
}

// InUse reports how many IDs are currently handed out.
func (pool *SessionPool) InUse() int {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	return int(pool.cur) - len(pool.unused)
}
