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

	"github.com/ciphertalk/roomcrypt/pkg/cryptstate"
	"github.com/ciphertalk/roomcrypt/pkg/rooms"
	"github.com/ciphertalk/roomcrypt/pkg/wire"
)

var ErrOutOfOrder = errors.New("transfer: chunk out of order")

// File describes a transfer as seen by the receiving side.
type File struct {
	TransferID uint32
	RoomID     string
	From       string
	Name       string
	Size       int64
}

// A Sink opens the destination for an incoming file. Close is called once
// the file is complete. If the writer also has an Abort method, it is
// called instead of Close for transfers that fail or stay unfinished.
type Sink func(f File) (io.WriteCloser, error)

type aborter interface {
	Abort() error
}

func discard(w io.WriteCloser) {
	if a, ok := w.(aborter); ok {
		a.Abort()
		return
	}
	w.Close()
}

// A Receiver reassembles incoming transfers and answers room handshakes.
type Receiver struct {
	reg  *rooms.Registry
	hs   *rooms.Handshake
	sink Sink

	// OnFile, if set, is called after a file has been written completely.
	OnFile func(f File)

	*log.Logger
}

// NewReceiver creates a Receiver. hs may be nil, in which case handshake
// offers are ignored and only rooms with a known secret can receive.
func NewReceiver(reg *rooms.Registry, hs *rooms.Handshake, sink Sink, logger *log.Logger) *Receiver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Receiver{reg: reg, hs: hs, sink: sink, Logger: logger}
}

type incoming struct {
	file  File
	ctx   *cryptstate.Context
	state []byte
	next  int32
	w     io.WriteCloser
}

// Receive processes messages from conn until the peer closes it, ctx
// ends or a transfer fails. A normal close by the peer returns nil.
// Transfers still open at that point are closed unfinished.
func (rc *Receiver) Receive(ctx context.Context, conn MessageConn) error {
	streams := make(map[uint32]*incoming)
	defer func() {
		for id, in := range streams {
			discard(in.w)
			rc.Printf("Transfer %d of %v left unfinished", id, in.file.Name)
		}
	}()

	stop := closeOnDone(ctx, conn)
	defer stop()

	for {
		buf, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
		msg, err := wire.Unpack(buf)
		if err != nil {
			rc.Printf("Dropping undecodable message: %v", err)
			continue
		}
		switch m := msg.(type) {
		case *wire.InitRoom:
			rc.handleInitRoom(conn, m)
		case *wire.FileChunk:
			if err := rc.handleChunk(streams, m); err != nil {
				return err
			}
		}
	}
}

func (rc *Receiver) handleInitRoom(conn MessageConn, m *wire.InitRoom) {
	if rc.hs == nil {
		rc.Printf("Ignoring room offer from %v", m.From)
		return
	}
	reply, room, err := rc.hs.Accept(m)
	if err != nil {
		rc.Printf("Rejected room offer from %v: %v", m.From, err)
		return
	}
	buf, err := wire.Pack(reply)
	if err == nil {
		err = conn.WriteMessage(buf)
	}
	if err != nil {
		rc.Printf("Unable to answer room offer for %v: %v", room.ID, err)
		return
	}
	rc.Printf("Accepted room %v from %v", room.ID, m.From)
	if number, err := rc.reg.SafetyNumber(room.ID); err == nil {
		rc.Printf("Safety number for room %v: %v", room.ID, number)
	}
}

func (rc *Receiver) handleChunk(streams map[uint32]*incoming, m *wire.FileChunk) error {
	in, ok := streams[m.TransferId]
	if !ok {
		if m.ChunkNumber != 0 {
			return fmt.Errorf("%w: transfer %d starts at chunk %d", ErrOutOfOrder, m.TransferId, m.ChunkNumber)
		}
		var err error
		if in, err = rc.open(m); err != nil {
			return err
		}
		streams[m.TransferId] = in
	}

	if m.ChunkNumber != in.next || (m.AmountChunks > 0 && m.ChunkNumber >= m.AmountChunks) {
		delete(streams, m.TransferId)
		discard(in.w)
		return fmt.Errorf("%w: transfer %d got chunk %d, want %d", ErrOutOfOrder, m.TransferId, m.ChunkNumber, in.next)
	}

	out, next, err := in.ctx.Transform(m.Data, in.state, false)
	if err == nil && m.IsLast {
		out, err = in.ctx.RemovePadding(out)
	}
	if err == nil {
		var n int
		n, err = in.w.Write(out)
		in.file.Size += int64(n)
	}
	if err != nil {
		delete(streams, m.TransferId)
		discard(in.w)
		return fmt.Errorf("transfer: %v chunk %d: %w", in.file.Name, m.ChunkNumber, err)
	}
	in.state = next
	in.next++

	if m.IsLast {
		delete(streams, m.TransferId)
		if err := in.w.Close(); err != nil {
			return err
		}
		rc.Printf("Received %v (%d bytes) in room %v", in.file.Name, in.file.Size, in.file.RoomID)
		if rc.OnFile != nil {
			rc.OnFile(in.file)
		}
	}
	return nil
}

// open sets up the state for a new transfer from its first chunk. The
// chunk's token is authoritative for the room's settings.
func (rc *Receiver) open(m *wire.FileChunk) (*incoming, error) {
	room, changed, err := rc.reg.Apply(m.Token)
	if err != nil {
		return nil, err
	}
	if changed {
		rc.Printf("Transfer %d switched room %v to new settings", m.TransferId, room.ID)
	}
	ctx, err := rc.reg.Context(room.ID)
	if err != nil {
		return nil, err
	}
	file := File{
		TransferID: m.TransferId,
		RoomID:     room.ID,
		From:       m.From,
		Name:       m.FileName,
	}
	w, err := rc.sink(file)
	if err != nil {
		return nil, err
	}
	return &incoming{file: file, ctx: ctx, w: w}, nil
}
