// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package es reads raw AVS2 elementary streams.
package es

import (
	"io"
	"time"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/codec/avs2"
	"github.com/cnotch/avs2probe/utils"
)

const (
	defaultReadSize = 64 * 1024
	// 单个访问单元的上限，超出说明输入不是 AVS2 基本流
	maxFrameSize = 32 * 1024 * 1024
)

// ErrFrameTooLarge is returned when no access unit boundary is found within
// the size limit.
var ErrFrameTooLarge = errorString("es: access unit too large")

type errorString string

func (e errorString) Error() string { return string(e) }

// Reader 从基本流中按访问单元（一幅图像）切分数据。
// 访问单元以片数据之后出现的第一个非片起始码为界（序列结束码归属前一个单元）。
type Reader struct {
	r       io.Reader
	buf     []byte
	scan    int
	gotPic  bool
	gotData bool // 当前单元已出现片
	eof     bool

	frameRate codec.Rational
	count     int64
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, buf: make([]byte, 0, defaultReadSize)}
}

// SetFrameRate sets the rate used to stamp the frames, usually taken
// from the sequence header. Zero leaves Dts and Pts unset.
func (er *Reader) SetFrameRate(fr codec.Rational) {
	er.frameRate = fr
}

// ReadFrame returns the next access unit, io.EOF at the end of the stream.
// The payload is owned by the caller.
func (er *Reader) ReadFrame() (*codec.Frame, error) {
	for {
		next, code, ok := utils.FindStartCode(er.buf, er.scan)
		if ok {
			start := next - 4
			if er.boundary(code) && start > 0 {
				return er.cut(start), nil
			}
			er.track(code)
			er.scan = next
			continue
		}

		if er.eof {
			if len(er.buf) == 0 {
				return nil, io.EOF
			}
			return er.cut(len(er.buf)), nil
		}

		// 保留可能跨越读边界的起始码前缀
		if er.scan = len(er.buf) - 3; er.scan < 0 {
			er.scan = 0
		}
		if err := er.fill(); err != nil {
			return nil, err
		}
	}
}

func (er *Reader) boundary(code uint32) bool {
	if avs2.IsSliceStartCode(code) || code == avs2.StartCodeSeqEnd {
		return false
	}
	if er.gotData {
		return true
	}
	return er.gotPic && avs2.IsPictureStartCode(code)
}

func (er *Reader) track(code uint32) {
	switch {
	case avs2.IsPictureStartCode(code):
		er.gotPic = true
	case avs2.IsSliceStartCode(code):
		er.gotData = true
	}
}

func (er *Reader) cut(n int) *codec.Frame {
	frame := &codec.Frame{
		MediaType: codec.MediaTypeVideo,
		Payload:   make([]byte, n),
	}
	copy(frame.Payload, er.buf[:n])
	if !er.frameRate.IsZero() {
		frame.Dts = er.count * int64(time.Second) * int64(er.frameRate.Den) / int64(er.frameRate.Num)
		frame.Pts = frame.Dts
	}
	er.count++

	er.buf = append(er.buf[:0], er.buf[n:]...)
	er.scan = 0
	er.gotPic = false
	er.gotData = false
	return frame
}

func (er *Reader) fill() error {
	if len(er.buf) >= maxFrameSize {
		return ErrFrameTooLarge
	}
	if cap(er.buf)-len(er.buf) < defaultReadSize {
		grown := make([]byte, len(er.buf), 2*cap(er.buf)+defaultReadSize)
		copy(grown, er.buf)
		er.buf = grown
	}

	n, err := er.r.Read(er.buf[len(er.buf):cap(er.buf)])
	er.buf = er.buf[:len(er.buf)+n]
	if err == io.EOF {
		er.eof = true
		return nil
	}
	return err
}
