/**********************************************************************************
* Copyright (c) 2009-2017 Misakai Ltd.
* This program is free software: you can redistribute it and/or modify it under the
* terms of the GNU Affero General Public License as published by the  Free Software
* Foundation, either version 3 of the License, or(at your option) any later version.
*
* This program is distributed  in the hope that it  will be useful, but WITHOUT ANY
* WARRANTY;  without even  the implied warranty of MERCHANTABILITY or FITNESS FOR A
* PARTICULAR PURPOSE.  See the GNU Affero General Public License  for  more details.
*
* You should have  received a copy  of the  GNU Affero General Public License along
* with this program. If not, see<http://www.gnu.org/licenses/>.
************************************************************************************/
//
// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package websocket

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// 子协议
const (
	SubprotocolEvents = "events" // 服务端推送文本事件
	SubprotocolRTP    = "rtp"    // 客户端推送 `$` 交织格式的 rtp 包
)

// Conn websocket连接
type Conn interface {
	net.Conn
	Subprotocol() string // 获取子协议
	TextTransport() Conn // 获取文本传输通道
	Path() string        // 接入时的ws后的路径
}

type websocketConn interface {
	NextReader() (messageType int, r io.Reader, err error)
	NextWriter(messageType int) (io.WriteCloser, error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Subprotocol() string
}

// websocketTransport represents a websocket connection.
type websocketTransport struct {
	sync.Mutex
	socket    websocketConn
	reader    io.Reader
	closing   chan struct{}
	closeOnce sync.Once
	path      string
}

const (
	writeWait  = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait   = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
)

// The default upgrader to use
var upgrader = &websocket.Upgrader{
	Subprotocols: []string{SubprotocolEvents, SubprotocolRTP},
	CheckOrigin:  func(r *http.Request) bool { return true },
}

// TryUpgrade attempts to upgrade an HTTP request to events or rtp over websocket.
func TryUpgrade(w http.ResponseWriter, r *http.Request, path string) (Conn, bool) {
	if w == nil || r == nil {
		return nil, false
	}

	if ws, err := upgrader.Upgrade(w, r, nil); err == nil {
		return newConn(ws, path), true
	}

	return nil, false
}

// newConn creates a new transport from websocket and keeps it alive with pings.
func newConn(ws websocketConn, path string) Conn {
	conn := &websocketTransport{
		socket:  ws,
		closing: make(chan struct{}),
		path:    path,
	}

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go conn.keepAlive()
	return conn
}

func (c *websocketTransport) keepAlive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Lock()
			err := c.socket.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.Unlock()
			if err != nil {
				return
			}
		case <-c.closing:
			return
		}
	}
}

// Read reads data from the connection. Message boundaries are not kept,
// binary and text messages form one byte stream.
func (c *websocketTransport) Read(b []byte) (n int, err error) {
	if c.reader == nil {
		// New message
		var opCode int
		var r io.Reader
		for {
			if opCode, r, err = c.socket.NextReader(); err != nil {
				return
			}

			if opCode != websocket.BinaryMessage && opCode != websocket.TextMessage {
				continue
			}

			c.reader = r
			break
		}
	}

	n, err = c.reader.Read(b)
	if err == io.EOF {
		c.reader = nil
		err = nil
	}
	return
}

// Write writes b as one binary message.
func (c *websocketTransport) Write(b []byte) (int, error) {
	return c.write(websocket.BinaryMessage, b)
}

func (c *websocketTransport) write(messageType int, b []byte) (n int, err error) {
	// Serialize write to avoid concurrent write
	c.Lock()
	defer c.Unlock()

	c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	var w io.WriteCloser
	if w, err = c.socket.NextWriter(messageType); err == nil {
		if n, err = w.Write(b); err == nil {
			err = w.Close()
		}
	}
	return
}

// Close terminates the connection.
func (c *websocketTransport) Close() error {
	c.closeOnce.Do(func() { close(c.closing) })
	return c.socket.Close()
}

// LocalAddr returns the local network address.
func (c *websocketTransport) LocalAddr() net.Addr {
	return c.socket.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *websocketTransport) RemoteAddr() net.Addr {
	return c.socket.RemoteAddr()
}

// SetDeadline sets the read and write deadlines associated
// with the connection.
func (c *websocketTransport) SetDeadline(t time.Time) (err error) {
	if err = c.socket.SetReadDeadline(t); err == nil {
		err = c.socket.SetWriteDeadline(t)
	}
	return
}

// SetReadDeadline sets the deadline for future Read calls.
func (c *websocketTransport) SetReadDeadline(t time.Time) error {
	return c.socket.SetReadDeadline(t)
}

// SetWriteDeadline sets the deadline for future Write calls.
func (c *websocketTransport) SetWriteDeadline(t time.Time) error {
	return c.socket.SetWriteDeadline(t)
}

// Subprotocol 获取子协议名称
func (c *websocketTransport) Subprotocol() string {
	return c.socket.Subprotocol()
}

// TextTransport 获取文本传输Conn
func (c *websocketTransport) TextTransport() Conn {
	return &websocketTextTransport{c}
}

func (c *websocketTransport) Path() string {
	return c.path
}

type websocketTextTransport struct {
	*websocketTransport
}

// Write writes b as one text message.
func (c *websocketTextTransport) Write(b []byte) (int, error) {
	return c.write(websocket.TextMessage, b)
}
