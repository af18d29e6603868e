// Copyright (c) 2018 The Grumble Authors
// The use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-file.

package web

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEcho(t *testing.T) {
	l := NewListener(nil, nil)
	srv := httptest.NewServer(l)
	defer srv.Close()
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		for {
			buf, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err := c.WriteMessage(buf); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}

	msgs := [][]byte{[]byte("first"), {0, 1, 2, 3}, bytes.Repeat([]byte{0xAA}, 70000)}
	for _, msg := range msgs {
		if err := c.WriteMessage(msg); err != nil {
			t.Fatal(err)
		}
		got, err := c.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, msg) {
			t.Errorf("echo of %d bytes differs", len(msg))
		}
	}
	c.Close()
}

func TestPeerCloseIsEOF(t *testing.T) {
	l := NewListener(nil, nil)
	srv := httptest.NewServer(l)
	defer srv.Close()
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err == nil {
			c.Close()
		}
	}()

	c, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, err := c.ReadMessage(); err != io.EOF {
		t.Errorf("Got %v, expected io.EOF", err)
	}
}

func TestClosedListener(t *testing.T) {
	l := NewListener(nil, nil)
	l.Close()
	if _, err := l.Accept(); err == nil {
		t.Errorf("Accept on closed listener succeeded")
	}
	if err := l.Close(); err == nil {
		t.Errorf("double Close succeeded")
	}
}
