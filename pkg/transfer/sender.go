// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/ciphertalk/roomcrypt/pkg/rooms"
	"github.com/ciphertalk/roomcrypt/pkg/sessionpool"
	"github.com/ciphertalk/roomcrypt/pkg/wire"
)

var ErrTooManyChunks = errors.New("transfer: file needs more chunks than the wire format allows")

// A MessageConn exchanges whole binary messages. *web.Conn implements it.
type MessageConn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(buf []byte) error
	Close() error
}

// A Sender streams files into rooms. Concurrent sends over the same
// connection are told apart by their transfer id.
type Sender struct {
	From      string
	To        string
	ChunkSize int

	reg *rooms.Registry
	ids *sessionpool.SessionPool
	*log.Logger
}

func NewSender(reg *rooms.Registry, from, to string, logger *log.Logger) *Sender {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ids := sessionpool.New()
	ids.EnableUseTracking()
	return &Sender{
		From:      from,
		To:        to,
		ChunkSize: DefaultChunkSize,
		reg:       reg,
		ids:       ids,
		Logger:    logger,
	}
}

// Send encrypts size bytes from r with the room's current settings and
// writes them to conn as FileChunk messages. Every chunk carries the room
// token; the last one is padded and flagged.
func (s *Sender) Send(ctx context.Context, conn MessageConn, roomID, name string, r io.Reader, size int64) error {
	room, err := s.reg.Lookup(roomID)
	if err != nil {
		return err
	}
	token, err := room.Token()
	if err != nil {
		return err
	}
	cctx, err := s.reg.Context(roomID)
	if err != nil {
		return err
	}
	if err := checkChunkSize(cctx, s.ChunkSize); err != nil {
		return err
	}

	amount := (size + int64(s.ChunkSize) - 1) / int64(s.ChunkSize)
	if amount == 0 {
		amount = 1
	}
	if amount > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrTooManyChunks, amount)
	}

	id, err := s.ids.Get()
	if err != nil {
		return err
	}
	defer s.ids.Reclaim(id)

	s.Printf("Sending %v (%d bytes, %d chunks) to room %v as transfer %d", name, size, amount, roomID, id)

	var (
		state []byte
		index int32
	)
	err = eachChunk(io.LimitReader(r, size), s.ChunkSize, func(chunk []byte, last bool) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if last {
			padded, err := cctx.AddPadding(chunk)
			if err != nil {
				return err
			}
			chunk = padded
		}
		data, next, err := cctx.Transform(chunk, state, true)
		if err != nil {
			return err
		}
		state = next

		buf, err := wire.Pack(&wire.FileChunk{
			From:         s.From,
			To:           s.To,
			FileName:     name,
			Data:         data,
			ChunkNumber:  index,
			IsLast:       last,
			Token:        token,
			AmountChunks: int32(amount),
			TransferId:   id,
		})
		if err != nil {
			return err
		}
		index++
		return conn.WriteMessage(buf)
	})
	if err != nil {
		s.Printf("Transfer %d of %v failed: %v", id, name, err)
		return err
	}
	return nil
}

// Initiate runs the initiating side of a room handshake over conn and
// returns once the shared secret for roomID is stored.
func Initiate(ctx context.Context, conn MessageConn, hs *rooms.Handshake, roomID, from, to string) (*rooms.Room, error) {
	offer, err := hs.Offer(roomID, from, to)
	if err != nil {
		return nil, err
	}
	buf, err := wire.Pack(offer)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(buf); err != nil {
		return nil, err
	}

	stop := closeOnDone(ctx, conn)
	defer stop()
	for {
		buf, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		msg, err := wire.Unpack(buf)
		if err != nil {
			return nil, err
		}
		if reply, ok := msg.(*wire.InitRoom); ok {
			return hs.Complete(reply)
		}
	}
}

// closeOnDone closes conn when ctx ends, which unblocks a pending read.
// The returned func stops the watch.
func closeOnDone(ctx context.Context, conn MessageConn) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}
