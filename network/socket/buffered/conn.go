// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package buffered wraps ingest connections with a sized read buffer,
// an idle read timeout and a received byte counter.
package buffered

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"
)

const (
	defaultBufferSize = 64 * 1024
	minBufferSize     = 8 * 1024
)

// Conn wraps a net.Conn and provides buffered reads.
type Conn struct {
	socket      net.Conn      // The underlying network connection.
	reader      *bufio.Reader // The buffered reader
	bufferSize  int           // The read buffer size
	readTimeout time.Duration // 0 表示不设置读超时
	received    int64
}

// NewConn creates a new buffered connection; c is returned as is when it
// is already buffered.
func NewConn(c net.Conn, options ...Option) *Conn {
	if conn, ok := c.(*Conn); ok {
		return conn
	}

	conn := &Conn{socket: c}
	for _, option := range options {
		option.apply(conn)
	}

	if conn.bufferSize <= 0 {
		conn.bufferSize = defaultBufferSize
	}

	conn.reader = bufio.NewReaderSize(socketReader{conn}, conn.bufferSize)
	return conn
}

// Reader 返回内部的 bufio.Reader
func (m *Conn) Reader() *bufio.Reader {
	return m.reader
}

// Received 从底层连接读取的字节数
func (m *Conn) Received() int64 {
	return atomic.LoadInt64(&m.received)
}

// Read reads the block of data from the underlying buffer.
func (m *Conn) Read(p []byte) (int, error) {
	return m.reader.Read(p)
}

// Write writes directly into the underlying connection.
func (m *Conn) Write(p []byte) (int, error) {
	return m.socket.Write(p)
}

// Close closes the connection. Any blocked Read or Write operations will be unblocked
// and return errors.
func (m *Conn) Close() error {
	return m.socket.Close()
}

// LocalAddr returns the local network address.
func (m *Conn) LocalAddr() net.Addr {
	return m.socket.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (m *Conn) RemoteAddr() net.Addr {
	return m.socket.RemoteAddr()
}

// SetDeadline sets the read and write deadlines associated
// with the connection.
func (m *Conn) SetDeadline(t time.Time) error {
	return m.socket.SetDeadline(t)
}

// SetReadDeadline sets the deadline for future Read calls.
// An idle read timeout overrides it on the next socket read.
func (m *Conn) SetReadDeadline(t time.Time) error {
	return m.socket.SetReadDeadline(t)
}

// SetWriteDeadline sets the deadline for future Write calls
// and any currently-blocked Write call.
func (m *Conn) SetWriteDeadline(t time.Time) error {
	return m.socket.SetWriteDeadline(t)
}

// socketReader 每次读取底层连接前刷新读超时
type socketReader struct {
	conn *Conn
}

func (r socketReader) Read(p []byte) (int, error) {
	if r.conn.readTimeout > 0 {
		if err := r.conn.socket.SetReadDeadline(time.Now().Add(r.conn.readTimeout)); err != nil {
			return 0, err
		}
	}
	n, err := r.conn.socket.Read(p)
	atomic.AddInt64(&r.conn.received, int64(n))
	return n, err
}

// Option 配置 Conn 的选项接口
type Option interface {
	apply(*Conn)
}

// OptionFunc 包装函数以便它满足 Option 接口
type optionFunc func(*Conn)

func (f optionFunc) apply(c *Conn) {
	f(c)
}

// ReadTimeout 连续 d 时间没有收到数据时读取失败
func ReadTimeout(d time.Duration) Option {
	return optionFunc(func(c *Conn) {
		if d > 0 {
			c.readTimeout = d
		}
	})
}

// BufferSize Conn 缓冲大小
func BufferSize(bufferSize int) Option {
	return optionFunc(func(c *Conn) {
		if bufferSize < minBufferSize { // 如果不合规，设置成最小值
			bufferSize = minBufferSize
		}
		c.bufferSize = bufferSize
	})
}
