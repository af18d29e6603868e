// Copyright (c) 2018 The Grumble Authors
// The use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-file.

// Package web accepts and dials the websocket connections peers use to
// exchange room handshakes and encrypted file chunks.
package web

import (
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 20 * time.Second,
	Subprotocols:     []string{Subprotocol},
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// A Listener is an http.Handler that upgrades requests to websockets and
// hands the resulting connections out through Accept.
type Listener struct {
	sockets chan *Conn
	done    chan struct{}
	addr    net.Addr
	closed  int32
	logger  *log.Logger
}

func NewListener(laddr net.Addr, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Listener{
		sockets: make(chan *Conn),
		done:    make(chan struct{}),
		addr:    laddr,
		logger:  logger,
	}
}

func (l *Listener) Accept() (*Conn, error) {
	if atomic.LoadInt32(&l.closed) != 0 {
		return nil, fmt.Errorf("accept ws %v: use of closed websocket listener", l.addr)
	}
	select {
	case ws := <-l.sockets:
		return ws, nil
	case <-l.done:
		return nil, fmt.Errorf("accept ws %v: use of closed websocket listener", l.addr)
	}
}

func (l *Listener) Close() error {
	if !atomic.CompareAndSwapInt32(&l.closed, 0, 1) {
		return fmt.Errorf("close ws %v: use of closed websocket listener", l.addr)
	}
	close(l.done)
	return nil
}

func (l *Listener) Addr() net.Addr {
	return l.addr
}

func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&l.closed) != 0 {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	l.logger.Printf("Upgrading web connection from: %v", r.RemoteAddr)
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Printf("Failed upgrade: %v", err)
		return
	}
	select {
	case l.sockets <- newConn(ws):
	case <-l.done:
		ws.Close()
	}
}
