// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package wire holds the protobuf messages exchanged between peers. The
// message layout is described in wire.proto.
package wire

import (
	"errors"

	"github.com/golang/protobuf/proto"
)

var ErrEmptyEnvelope = errors.New("wire: envelope carries no message")

type MessageType int32

const (
	MessageType_TEXT      MessageType = 0
	MessageType_INIT_ROOM MessageType = 1
)

var MessageType_name = map[int32]string{
	0: "TEXT",
	1: "INIT_ROOM",
}

var MessageType_value = map[string]int32{
	"TEXT":      0,
	"INIT_ROOM": 1,
}

func (x MessageType) String() string {
	return proto.EnumName(MessageType_name, int32(x))
}

type InitRoom struct {
	From            string      `protobuf:"bytes,1,opt,name=from,proto3" json:"from,omitempty"`
	To              string      `protobuf:"bytes,2,opt,name=to,proto3" json:"to,omitempty"`
	Token           string      `protobuf:"bytes,3,opt,name=token,proto3" json:"token,omitempty"`
	PublicComponent string      `protobuf:"bytes,4,opt,name=public_component,json=publicComponent,proto3" json:"public_component,omitempty"`
	Type            MessageType `protobuf:"varint,5,opt,name=type,proto3,enum=roomcrypt.MessageType" json:"type,omitempty"`
}

func (m *InitRoom) Reset()         { *m = InitRoom{} }
func (m *InitRoom) String() string { return proto.CompactTextString(m) }
func (*InitRoom) ProtoMessage()    {}

type FileChunk struct {
	From         string `protobuf:"bytes,1,opt,name=from,proto3" json:"from,omitempty"`
	To           string `protobuf:"bytes,2,opt,name=to,proto3" json:"to,omitempty"`
	FileName     string `protobuf:"bytes,3,opt,name=file_name,json=fileName,proto3" json:"file_name,omitempty"`
	Data         []byte `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
	ChunkNumber  int32  `protobuf:"varint,5,opt,name=chunk_number,json=chunkNumber,proto3" json:"chunk_number,omitempty"`
	IsLast       bool   `protobuf:"varint,6,opt,name=is_last,json=isLast,proto3" json:"is_last,omitempty"`
	Token        string `protobuf:"bytes,7,opt,name=token,proto3" json:"token,omitempty"`
	AmountChunks int32  `protobuf:"varint,8,opt,name=amount_chunks,json=amountChunks,proto3" json:"amount_chunks,omitempty"`
	TransferId   uint32 `protobuf:"varint,9,opt,name=transfer_id,json=transferId,proto3" json:"transfer_id,omitempty"`
}

func (m *FileChunk) Reset()         { *m = FileChunk{} }
func (m *FileChunk) String() string { return proto.CompactTextString(m) }
func (*FileChunk) ProtoMessage()    {}

type Envelope struct {
	InitRoom  *InitRoom  `protobuf:"bytes,1,opt,name=init_room,json=initRoom,proto3" json:"init_room,omitempty"`
	FileChunk *FileChunk `protobuf:"bytes,2,opt,name=file_chunk,json=fileChunk,proto3" json:"file_chunk,omitempty"`
}

func (m *Envelope) Reset()         { *m = Envelope{} }
func (m *Envelope) String() string { return proto.CompactTextString(m) }
func (*Envelope) ProtoMessage()    {}

func init() {
	proto.RegisterEnum("roomcrypt.MessageType", MessageType_name, MessageType_value)
	proto.RegisterType((*InitRoom)(nil), "roomcrypt.InitRoom")
	proto.RegisterType((*FileChunk)(nil), "roomcrypt.FileChunk")
	proto.RegisterType((*Envelope)(nil), "roomcrypt.Envelope")
}

// Pack wraps msg in an Envelope and marshals it.
func Pack(msg proto.Message) ([]byte, error) {
	env := &Envelope{}
	switch m := msg.(type) {
	case *InitRoom:
		env.InitRoom = m
	case *FileChunk:
		env.FileChunk = m
	default:
		return nil, errors.New("wire: unsupported message type")
	}
	return proto.Marshal(env)
}

// Unpack unmarshals an Envelope and returns the message it carries.
func Unpack(buf []byte) (proto.Message, error) {
	env := &Envelope{}
	if err := proto.Unmarshal(buf, env); err != nil {
		return nil, err
	}
	switch {
	case env.InitRoom != nil:
		return env.InitRoom, nil
	case env.FileChunk != nil:
		return env.FileChunk, nil
	}
	return nil, ErrEmptyEnvelope
}
