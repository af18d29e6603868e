// Copyright (c) 2018 The Grumble Authors
// The use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-file.

package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Subprotocol is negotiated on every connection.
const Subprotocol = "roomcrypt"

const closeTimeout = 5 * time.Second

// A Conn carries whole binary messages over a websocket. Writes may come
// from several goroutines; reads must stay on one.
type Conn struct {
	ws  *websocket.Conn
	wmu sync.Mutex
}

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Dial opens a websocket to url, e.g. ws://127.0.0.1:7373/.
func Dial(ctx context.Context, url string) (*Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 20 * time.Second,
		Subprotocols:     []string{Subprotocol},
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return newConn(ws), nil
}

// ReadMessage returns the next binary message. Text messages are skipped.
// A normal close by the peer is reported as io.EOF.
func (c *Conn) ReadMessage() ([]byte, error) {
	for {
		kind, buf, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		if kind == websocket.BinaryMessage {
			return buf, nil
		}
	}
}

// WriteMessage sends buf as one binary message.
func (c *Conn) WriteMessage(buf []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, buf)
}

// Close sends a close frame and closes the underlying connection.
func (c *Conn) Close() error {
	c.wmu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout))
	c.wmu.Unlock()
	return c.ws.Close()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.ws.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.ws.SetWriteDeadline(t)
}
