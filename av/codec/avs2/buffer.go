// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// BufferFormat 像素缓冲格式，4:2:0
type BufferFormat struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	BitDepth int `json:"bitdepth"`
}

// BytesPerSample returns 2 for high bit depth formats, 1 otherwise.
func (f BufferFormat) BytesPerSample() int {
	if f.BitDepth > 8 {
		return 2
	}
	return 1
}

// Stride returns the line size of plane i.
func (f BufferFormat) Stride(i int) int {
	w := f.Width
	if i > 0 {
		w = (w + 1) >> 1
	}
	return w * f.BytesPerSample()
}

// PlaneHeight returns the number of lines of plane i.
func (f BufferFormat) PlaneHeight(i int) int {
	if i > 0 {
		return (f.Height + 1) >> 1
	}
	return f.Height
}

// Size returns the bytes needed by all three planes.
func (f BufferFormat) Size() int {
	size := 0
	for i := 0; i < 3; i++ {
		size += f.Stride(i) * f.PlaneHeight(i)
	}
	return size
}

func (f BufferFormat) String() string {
	return fmt.Sprintf("%dx%d@%dbit", f.Width, f.Height, f.BitDepth)
}

// PixelBuffer 引用计数的像素缓冲。
// 平面数据在第一次访问时才分配，只解析头部时不占用像素内存。
type PixelBuffer struct {
	format  BufferFormat
	refs    int32
	once    sync.Once
	data    []byte
	planes  [3][]byte
	release func(b *PixelBuffer)
}

// NewPixelBuffer creates a standalone buffer with one reference.
func NewPixelBuffer(format BufferFormat) *PixelBuffer {
	return &PixelBuffer{format: format, refs: 1}
}

// Format returns the buffer format.
func (b *PixelBuffer) Format() BufferFormat {
	return b.format
}

// Ref adds a reference and returns b.
func (b *PixelBuffer) Ref() *PixelBuffer {
	atomic.AddInt32(&b.refs, 1)
	return b
}

// Unref drops a reference; the last one returns the buffer to its pool.
func (b *PixelBuffer) Unref() {
	refs := atomic.AddInt32(&b.refs, -1)
	if refs == 0 && b.release != nil {
		b.release(b)
	}
	if refs < 0 {
		panic("avs2: pixel buffer unref below zero")
	}
}

// Refs returns the current reference count.
func (b *PixelBuffer) Refs() int {
	return int(atomic.LoadInt32(&b.refs))
}

// Plane returns plane i (0:Y, 1:Cb, 2:Cr).
func (b *PixelBuffer) Plane(i int) []byte {
	b.once.Do(b.alloc)
	return b.planes[i]
}

// Stride returns the line size of plane i.
func (b *PixelBuffer) Stride(i int) int {
	return b.format.Stride(i)
}

func (b *PixelBuffer) alloc() {
	if cap(b.data) < b.format.Size() {
		b.data = make([]byte, b.format.Size())
	}
	data := b.data[:b.format.Size()]
	for i := range b.planes {
		n := b.format.Stride(i) * b.format.PlaneHeight(i)
		b.planes[i] = data[:n:n]
		data = data[n:]
	}
}

// BufferAllocator 像素缓冲分配器
type BufferAllocator interface {
	Allocate(format BufferFormat) (*PixelBuffer, error)
}

// BufferAllocatorFunc adapts a function to BufferAllocator.
type BufferAllocatorFunc func(format BufferFormat) (*PixelBuffer, error)

// Allocate calls f(format).
func (f BufferAllocatorFunc) Allocate(format BufferFormat) (*PixelBuffer, error) {
	return f(format)
}

// 缓冲池默认限制
const (
	DefaultMaxBuffers     = MaxDPBCount + 8
	DefaultMaxBufferBytes = 8192 * 4608 * 3 // 8192x4608 10bit
)

// BufferPool 限制同时存活数量并复用已释放缓冲的分配器
type BufferPool struct {
	mu       sync.Mutex
	maxLive  int
	maxBytes int
	live     int
	free     []*PixelBuffer
}

// NewBufferPool creates a pool. maxLive bounds the buffers alive at the same
// time, maxBytes bounds the size of a single buffer; 0 selects the defaults.
func NewBufferPool(maxLive, maxBytes int) *BufferPool {
	if maxLive <= 0 {
		maxLive = DefaultMaxBuffers
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBufferBytes
	}
	return &BufferPool{maxLive: maxLive, maxBytes: maxBytes}
}

// Allocate returns a buffer holding one reference.
func (p *BufferPool) Allocate(format BufferFormat) (*PixelBuffer, error) {
	if format.Width <= 0 || format.Height <= 0 || format.Size() > p.maxBytes {
		return nil, fmt.Errorf("%w: buffer %s exceeds %d bytes", ErrOutOfMemory, format, p.maxBytes)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.live >= p.maxLive {
		return nil, fmt.Errorf("%w: %d buffers alive", ErrResourceExhausted, p.live)
	}
	p.live++

	var b *PixelBuffer
	if n := len(p.free); n > 0 {
		b = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		data := b.data
		*b = PixelBuffer{data: data}
	} else {
		b = new(PixelBuffer)
	}
	b.format = format
	b.refs = 1
	b.release = p.put
	return b, nil
}

// Live returns the number of buffers not yet returned.
func (p *BufferPool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

func (p *BufferPool) put(b *PixelBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live--
	if len(p.free) < p.maxLive {
		p.free = append(p.free, b)
	}
}
