// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ciphertalk/roomcrypt/pkg/blockcipher"
	"github.com/ciphertalk/roomcrypt/pkg/cryptstate"
	"github.com/ciphertalk/roomcrypt/pkg/padding"
	"github.com/ciphertalk/roomcrypt/pkg/rooms"
	"github.com/ciphertalk/roomcrypt/pkg/web"
	"github.com/ciphertalk/roomcrypt/pkg/wire"
)

const (
	testG = "5"
	testP = "0xFFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A8AACAA68FFFFFFFFFFFFFFFF"
)

var roomSettings = cryptstate.Settings{
	Cipher:    cryptstate.Serpent,
	Mode:      cryptstate.CBC,
	Padding:   padding.PKCS7,
	KeyLength: blockcipher.Key256,
}

// pipeConn is an in-memory MessageConn. Closing either end closes both.
type pipeConn struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once
}

func newPipe() (*pipeConn, *pipeConn) {
	ab, ba := make(chan []byte, 64), make(chan []byte, 64)
	done, once := make(chan struct{}), new(sync.Once)
	return &pipeConn{in: ba, out: ab, done: done, once: once},
		&pipeConn{in: ab, out: ba, done: done, once: once}
}

func (p *pipeConn) ReadMessage() ([]byte, error) {
	select {
	case buf := <-p.in:
		return buf, nil
	case <-p.done:
		return nil, io.EOF
	}
}

func (p *pipeConn) WriteMessage(buf []byte) error {
	select {
	case p.out <- append([]byte(nil), buf...):
		return nil
	case <-p.done:
		return io.ErrClosedPipe
	}
}

func (p *pipeConn) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

type bufferSink struct {
	mu    sync.Mutex
	files map[string]*bytes.Buffer
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (s *bufferSink) open(f File) (io.WriteCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string]*bytes.Buffer)
	}
	buf := new(bytes.Buffer)
	s.files[f.Name] = buf
	return nopCloser{buf}, nil
}

func (s *bufferSink) get(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[name].Bytes()
}

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + i/256)
	}
	return data
}

func TestStreamMatchesEncrypt(t *testing.T) {
	ctx, err := cryptstate.New(cryptstate.Settings{
		Cipher:    cryptstate.RC6,
		Mode:      cryptstate.PCBC,
		Padding:   padding.PKCS7,
		KeyLength: blockcipher.Key128,
	}, bytes.Repeat([]byte{3}, 16), bytes.Repeat([]byte{9}, 16))
	if err != nil {
		t.Fatal(err)
	}

	for _, chunkSize := range []int{16, 32, 48} {
		for _, n := range []int{0, 1, 15, 16, 17, 48, 100, 160} {
			data := testData(n)
			want, err := ctx.Encrypt(data)
			if err != nil {
				t.Fatal(err)
			}

			var ct bytes.Buffer
			written, err := EncryptStream(ctx, &ct, bytes.NewReader(data), chunkSize)
			if err != nil {
				t.Fatalf("chunk %d, len %d: %v", chunkSize, n, err)
			}
			if written != int64(len(want)) || !bytes.Equal(ct.Bytes(), want) {
				t.Errorf("chunk %d, len %d: stream output differs from Encrypt", chunkSize, n)
			}

			var pt bytes.Buffer
			if _, err := DecryptStream(ctx, &pt, bytes.NewReader(ct.Bytes()), chunkSize); err != nil {
				t.Fatalf("chunk %d, len %d: %v", chunkSize, n, err)
			}
			if !bytes.Equal(pt.Bytes(), data) {
				t.Errorf("chunk %d, len %d: round trip differs", chunkSize, n)
			}
		}
	}
}

func TestStreamChunkSize(t *testing.T) {
	ctx, err := cryptstate.New(roomSettings, make([]byte, 16), make([]byte, 32))
	if err != nil {
		t.Fatal(err)
	}
	for _, size := range []int{0, -16, 10} {
		if _, err := EncryptStream(ctx, io.Discard, strings.NewReader("x"), size); !errors.Is(err, ErrChunkSize) {
			t.Errorf("size %d: got %v", size, err)
		}
	}
	if _, err := DecryptStream(ctx, io.Discard, bytes.NewReader(make([]byte, 20)), 16); !errors.Is(err, cryptstate.ErrUnalignedInput) {
		t.Errorf("Got %v, expected ErrUnalignedInput", err)
	}
}

func TestText(t *testing.T) {
	ctx, err := cryptstate.MakeContext("MAGENTA", "OFB", "ISO_10126", make([]byte, 16), bytes.Repeat([]byte{1}, 24))
	if err != nil {
		t.Fatal(err)
	}
	enc, err := EncodeText(ctx, "привет, room")
	if err != nil {
		t.Fatal(err)
	}
	dec, err := DecodeText(ctx, enc)
	if err != nil {
		t.Fatal(err)
	}
	if dec != "привет, room" {
		t.Errorf("Got %q", dec)
	}
	if _, err := DecodeText(ctx, "!!"); err == nil {
		t.Errorf("DecodeText accepted invalid base64")
	}
}

// sharedRoom registers the same room with a known secret in two
// registries.
func sharedRoom(t *testing.T) (alice, bob *rooms.Registry, id string) {
	t.Helper()
	alice, bob = rooms.New(nil), rooms.New(nil)
	room, token, err := alice.Create(roomSettings)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bob.Join(token); err != nil {
		t.Fatal(err)
	}
	secret := big.NewInt(0x5eed)
	alice.StoreSecret(room.ID, secret)
	bob.StoreSecret(room.ID, secret)
	return alice, bob, room.ID
}

func runReceiver(rc *Receiver, conn MessageConn) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- rc.Receive(context.Background(), conn) }()
	return errc
}

func TestSendReceive(t *testing.T) {
	alice, bob, id := sharedRoom(t)
	a, b := newPipe()

	sink := &bufferSink{}
	files := make(chan File, 4)
	rc := NewReceiver(bob, nil, sink.open, nil)
	rc.OnFile = func(f File) { files <- f }
	errc := runReceiver(rc, b)

	s := NewSender(alice, "alice", "bob", nil)
	s.ChunkSize = 64

	for _, n := range []int{0, 64, 1000} {
		data := testData(n)
		name := strings.Repeat("f", n%7+1)
		if err := s.Send(context.Background(), a, id, name, bytes.NewReader(data), int64(n)); err != nil {
			t.Fatal(err)
		}
		select {
		case f := <-files:
			if f.Name != name || f.RoomID != id || f.From != "alice" || f.Size != int64(n) {
				t.Errorf("Got %+v", f)
			}
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for file")
		}
		if !bytes.Equal(sink.get(name), data) {
			t.Errorf("%d bytes: received data differs", n)
		}
	}

	a.Close()
	if err := <-errc; err != nil {
		t.Errorf("Receive: %v", err)
	}
}

func TestConcurrentSends(t *testing.T) {
	alice, bob, id := sharedRoom(t)
	a, b := newPipe()

	sink := &bufferSink{}
	files := make(chan File, 8)
	rc := NewReceiver(bob, nil, sink.open, nil)
	rc.OnFile = func(f File) { files <- f }
	errc := runReceiver(rc, b)

	s := NewSender(alice, "alice", "bob", nil)
	s.ChunkSize = 32

	names := []string{"one", "two", "three", "four"}
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			data := testData(300 + i*50)
			if err := s.Send(context.Background(), a, id, name, bytes.NewReader(data), int64(len(data))); err != nil {
				t.Error(err)
			}
		}(i, name)
	}
	wg.Wait()

	for range names {
		select {
		case <-files:
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for files")
		}
	}
	for i, name := range names {
		if !bytes.Equal(sink.get(name), testData(300+i*50)) {
			t.Errorf("%v: received data differs", name)
		}
	}
	a.Close()
	<-errc
}

func TestOutOfOrder(t *testing.T) {
	alice, bob, id := sharedRoom(t)
	room, _ := alice.Lookup(id)
	token, _ := room.Token()

	a, b := newPipe()
	rc := NewReceiver(bob, nil, (&bufferSink{}).open, nil)
	errc := runReceiver(rc, b)

	for _, n := range []int32{0, 2} {
		buf, err := wire.Pack(&wire.FileChunk{
			FileName:     "gap",
			Data:         make([]byte, 16),
			ChunkNumber:  n,
			Token:        token,
			AmountChunks: 3,
			TransferId:   1,
		})
		if err != nil {
			t.Fatal(err)
		}
		a.WriteMessage(buf)
	}

	if err := <-errc; !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("Got %v, expected ErrOutOfOrder", err)
	}
}

func TestUnknownRoom(t *testing.T) {
	alice, _, id := sharedRoom(t)
	a, b := newPipe()
	rc := NewReceiver(rooms.New(nil), nil, (&bufferSink{}).open, nil)
	errc := runReceiver(rc, b)

	s := NewSender(alice, "alice", "carol", nil)
	s.Send(context.Background(), a, id, "lost", strings.NewReader("data"), 4)
	if err := <-errc; !errors.Is(err, rooms.ErrNoSuchRoom) {
		t.Errorf("Got %v, expected ErrNoSuchRoom", err)
	}
}

func TestSettingsFollowSender(t *testing.T) {
	alice, bob, id := sharedRoom(t)
	room, err := alice.Lookup(id)
	if err != nil {
		t.Fatal(err)
	}
	next := cryptstate.Settings{
		Cipher:    cryptstate.Magenta,
		Mode:      cryptstate.CFB,
		Padding:   padding.ANSIX923,
		KeyLength: blockcipher.Key192,
	}
	if _, err := room.UpdateSettings(next, bytes.Repeat([]byte{0x42}, 16)); err != nil {
		t.Fatal(err)
	}

	a, b := newPipe()
	sink := &bufferSink{}
	files := make(chan File, 1)
	rc := NewReceiver(bob, nil, sink.open, nil)
	rc.OnFile = func(f File) { files <- f }
	errc := runReceiver(rc, b)

	data := testData(300)
	s := NewSender(alice, "alice", "bob", nil)
	s.ChunkSize = 64
	if err := s.Send(context.Background(), a, id, "switched", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatal(err)
	}
	select {
	case <-files:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for file")
	}
	if !bytes.Equal(sink.get("switched"), data) {
		t.Errorf("received data differs")
	}
	joined, _ := bob.Lookup(id)
	if got, _ := joined.Settings(); got != next {
		t.Errorf("bob's room uses %v, expected %v", got, next)
	}

	a.Close()
	if err := <-errc; err != nil {
		t.Errorf("Receive: %v", err)
	}
}

func TestSendCancelled(t *testing.T) {
	alice, _, id := sharedRoom(t)
	a, _ := newPipe()
	s := NewSender(alice, "alice", "bob", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, a, id, "f", strings.NewReader("data"), 4); !errors.Is(err, context.Canceled) {
		t.Errorf("Got %v, expected context.Canceled", err)
	}
	if s.ids.InUse() != 0 {
		t.Errorf("transfer id not reclaimed")
	}
}

func TestOverWebsocket(t *testing.T) {
	alice, bob := rooms.New(nil), rooms.New(nil)
	room, _, err := alice.Create(roomSettings)
	if err != nil {
		t.Fatal(err)
	}

	l := web.NewListener(nil, nil)
	srv := httptest.NewServer(l)
	defer srv.Close()
	defer l.Close()

	sink := &bufferSink{}
	files := make(chan File, 1)
	rc := NewReceiver(bob, rooms.NewHandshake(bob, testG, testP), sink.open, nil)
	rc.OnFile = func(f File) { files <- f }
	errc := make(chan error, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			errc <- err
			return
		}
		defer conn.Close()
		errc <- rc.Receive(context.Background(), conn)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	conn, err := web.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Initiate(ctx, conn, rooms.NewHandshake(alice, testG, testP), room.ID, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	na, _ := alice.SafetyNumber(room.ID)
	nb, err := bob.SafetyNumber(room.ID)
	if err != nil || na != nb {
		t.Fatalf("safety numbers %q, %q, %v", na, nb, err)
	}

	data := testData(5000)
	s := NewSender(alice, "alice", "bob", nil)
	s.ChunkSize = 1024
	if err := s.Send(ctx, conn, room.ID, "report.bin", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatal(err)
	}
	select {
	case <-files:
	case <-ctx.Done():
		t.Fatal("timed out waiting for file")
	}
	if !bytes.Equal(sink.get("report.bin"), data) {
		t.Errorf("received data differs")
	}

	conn.Close()
	if err := <-errc; err != nil {
		t.Errorf("Receive: %v", err)
	}
}

type abortWriter struct {
	bytes.Buffer
	closed, aborted bool
}

func (w *abortWriter) Close() error { w.closed = true; return nil }
func (w *abortWriter) Abort() error { w.aborted = true; return nil }

func TestUnfinishedTransferAborted(t *testing.T) {
	alice, bob, id := sharedRoom(t)
	a, b := newPipe()

	w := &abortWriter{}
	opened := make(chan struct{})
	rc := NewReceiver(bob, nil, func(File) (io.WriteCloser, error) {
		close(opened)
		return w, nil
	}, nil)
	errc := runReceiver(rc, b)

	room, _ := alice.Lookup(id)
	token, _ := room.Token()
	buf, err := wire.Pack(&wire.FileChunk{
		FileName:     "cut",
		Data:         make([]byte, 16),
		Token:        token,
		AmountChunks: 2,
		TransferId:   9,
	})
	if err != nil {
		t.Fatal(err)
	}
	a.WriteMessage(buf)
	<-opened
	a.Close()

	if err := <-errc; err != nil {
		t.Errorf("Receive: %v", err)
	}
	if !w.aborted || w.closed {
		t.Errorf("aborted=%v closed=%v, expected abort only", w.aborted, w.closed)
	}
}
