// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferFormat(t *testing.T) {
	f := BufferFormat{Width: 1921, Height: 1081, BitDepth: 10}
	assert.Equal(t, 2, f.BytesPerSample())
	assert.Equal(t, 3842, f.Stride(0))
	assert.Equal(t, 1922, f.Stride(1))
	assert.Equal(t, 541, f.PlaneHeight(2))
	assert.Equal(t, 3842*1081+2*1922*541, f.Size())
	assert.Equal(t, "1921x1081@10bit", f.String())
}

func TestBufferPool(t *testing.T) {
	pool := NewBufferPool(2, 1<<20)
	format := BufferFormat{Width: 64, Height: 32, BitDepth: 8}

	a, err := pool.Allocate(format)
	require.NoError(t, err)
	b, err := pool.Allocate(format)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Live())

	_, err = pool.Allocate(format)
	assert.True(t, errors.Is(err, ErrResourceExhausted))

	_, err = pool.Allocate(BufferFormat{Width: 4096, Height: 4096, BitDepth: 8})
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	_, err = pool.Allocate(BufferFormat{})
	assert.True(t, errors.Is(err, ErrOutOfMemory))

	// 平面按需分配
	assert.Len(t, a.Plane(0), 64*32)
	assert.Len(t, a.Plane(1), 32*16)
	assert.Equal(t, 32, a.Stride(2))
	a.Plane(0)[0] = 0x55

	a.Ref()
	assert.Equal(t, 2, a.Refs())
	a.Unref()
	assert.Equal(t, 2, pool.Live())
	a.Unref()
	assert.Equal(t, 1, pool.Live())

	c, err := pool.Allocate(format)
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.Equal(t, 1, c.Refs())
	assert.Len(t, c.Plane(2), 32*16)

	b.Unref()
	c.Unref()
	assert.Equal(t, 0, pool.Live())
	assert.Panics(t, func() { c.Unref() })
}

func TestPixelBuffer_Standalone(t *testing.T) {
	b := NewPixelBuffer(BufferFormat{Width: 16, Height: 16, BitDepth: 8})
	assert.Equal(t, 1, b.Refs())
	assert.Len(t, b.Plane(0), 256)
	b.Unref()
	assert.Equal(t, 0, b.Refs())
}

func TestBufferAllocatorFunc(t *testing.T) {
	var got BufferFormat
	alloc := BufferAllocatorFunc(func(format BufferFormat) (*PixelBuffer, error) {
		got = format
		return nil, ErrResourceExhausted
	})

	d := NewDPB(alloc, nil)
	_, err := d.Acquire(testSeq(0), intraPic(0, 0, RefConfigSet{}))
	assert.True(t, errors.Is(err, ErrResourceExhausted))
	assert.Equal(t, BufferFormat{Width: 64, Height: 64, BitDepth: 8}, got)
	assert.Equal(t, 0, d.Len())
}
