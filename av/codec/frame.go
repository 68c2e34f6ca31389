// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"
	"strings"
)

// MediaType 媒体类型
type MediaType int

// 媒体类型常量
const (
	MediaTypeUnknown MediaType = iota - 1 // Usually treated as MediaTypeData
	MediaTypeVideo
	MediaTypeData // Opaque data information usually continuous
)

// String returns a lower-case ASCII representation of the media type.
func (mt MediaType) String() string {
	switch mt {
	case MediaTypeVideo:
		return "video"
	case MediaTypeData:
		return "data"
	default:
		return ""
	}
}

// MarshalText marshals the MediaType to text.
func (mt MediaType) MarshalText() ([]byte, error) {
	return []byte(mt.String()), nil
}

// UnmarshalText unmarshals text to a MediaType.
func (mt *MediaType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "video":
		*mt = MediaTypeVideo
	case "data":
		*mt = MediaTypeData
	default:
		return fmt.Errorf("unrecognized media type: %q", text)
	}
	return nil
}

// Frame 视频基本流的一个访问单元（一帧图像的全部起始码单元）
type Frame struct {
	MediaType        // 媒体类型
	Dts       int64  // DTS，单位为 ns
	Pts       int64  // PTS，单位为 ns
	Payload   []byte // 媒体数据载荷
	// NewExtradata 随包到达的新带外配置（序列头等），在解码载荷前应用
	NewExtradata []byte
}

// Size returns the payload size.
func (f *Frame) Size() int {
	return len(f.Payload)
}

// FrameWriter 包装 WriteFrame 方法的接口
type FrameWriter interface {
	WriteFrame(frame *Frame) error
}

// FrameWriterFunc adapts a function to FrameWriter.
type FrameWriterFunc func(frame *Frame) error

// WriteFrame calls f(frame).
func (f FrameWriterFunc) WriteFrame(frame *Frame) error {
	return f(frame)
}
