// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
	"time"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(code byte, payload ...byte) []byte {
	return append([]byte{0x00, 0x00, 0x01, code}, payload...)
}

func join(units ...[]byte) []byte {
	var b []byte
	for _, u := range units {
		b = append(b, u...)
	}
	return b
}

func testStream() (stream []byte, want [][]byte) {
	want = [][]byte{
		join(unit(0xb0, 0x20, 0x42), unit(0xb5, 0x21), unit(0xb3, 0xff, 0xee), unit(0x00, 0x11, 0x22), unit(0x01, 0x33)),
		join(unit(0xb6, 0x55, 0x66), unit(0x00, 0x77)),
		join(unit(0xb2, 0x61), unit(0xb6, 0x88), unit(0x00, 0x99), unit(0xb1)),
		join(unit(0xb0, 0x20, 0x42), unit(0xb3, 0x12), unit(0x00, 0x34)),
	}
	return join(want...), want
}

func TestReader_ReadFrame(t *testing.T) {
	stream, want := testStream()
	readers := map[string]func() io.Reader{
		"whole":    func() io.Reader { return bytes.NewReader(stream) },
		"one byte": func() io.Reader { return iotest.OneByteReader(bytes.NewReader(stream)) },
		"half":     func() io.Reader { return iotest.HalfReader(bytes.NewReader(stream)) },
	}
	for name, newReader := range readers {
		t.Run(name, func(t *testing.T) {
			r := NewReader(newReader())
			for i, w := range want {
				frame, err := r.ReadFrame()
				require.NoError(t, err, "frame %d", i)
				assert.Equal(t, w, frame.Payload, "frame %d", i)
				assert.Equal(t, codec.MediaTypeVideo, frame.MediaType)
			}
			_, err := r.ReadFrame()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestReader_Timestamps(t *testing.T) {
	stream, _ := testStream()
	r := NewReader(bytes.NewReader(stream))
	r.SetFrameRate(codec.Rational{Num: 25, Den: 1})
	for i := 0; i < 4; i++ {
		frame, err := r.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, int64(i)*int64(40*time.Millisecond), frame.Dts)
		assert.Equal(t, frame.Dts, frame.Pts)
	}
}

func TestReader_Empty(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestReader_Error(t *testing.T) {
	r := NewReader(iotest.TimeoutReader(bytes.NewReader(unit(0xb3, 0x01, 0x02))))
	_, err := r.ReadFrame()
	assert.Equal(t, iotest.ErrTimeout, err)
}
