// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"sync/atomic"
)

// Total 所有解码会话的累计
var Total = NewDecode()

// DecodeSample 解码统计采样
type DecodeSample struct {
	Frames   int64 `json:"frames"`   // 输入的访问单元
	Bytes    int64 `json:"bytes"`    // 输入字节数
	Pictures int64 `json:"pictures"` // 解码的图像
	Outputs  int64 `json:"outputs"`  // 按显示顺序输出的图像
	Errors   int64 `json:"errors"`   // 返回错误的访问单元
	Dropped  int64 `json:"dropped"`  // 因限速或队列满丢弃的访问单元
}

// Decode 解码统计接口
type Decode interface {
	AddFrame(size int64)
	AddPicture()
	AddOutput()
	AddError()
	AddDropped()
	GetSample() DecodeSample // 获取当前时点采样
}

func (ds *DecodeSample) clone() DecodeSample {
	return DecodeSample{
		Frames:   atomic.LoadInt64(&ds.Frames),
		Bytes:    atomic.LoadInt64(&ds.Bytes),
		Pictures: atomic.LoadInt64(&ds.Pictures),
		Outputs:  atomic.LoadInt64(&ds.Outputs),
		Errors:   atomic.LoadInt64(&ds.Errors),
		Dropped:  atomic.LoadInt64(&ds.Dropped),
	}
}

// Add 采样累加
func (ds *DecodeSample) Add(s DecodeSample) {
	ds.Frames += s.Frames
	ds.Bytes += s.Bytes
	ds.Pictures += s.Pictures
	ds.Outputs += s.Outputs
	ds.Errors += s.Errors
	ds.Dropped += s.Dropped
}

// Sub 返回两次采样的差值，用于计算速率
func (ds DecodeSample) Sub(prev DecodeSample) DecodeSample {
	return DecodeSample{
		Frames:   ds.Frames - prev.Frames,
		Bytes:    ds.Bytes - prev.Bytes,
		Pictures: ds.Pictures - prev.Pictures,
		Outputs:  ds.Outputs - prev.Outputs,
		Errors:   ds.Errors - prev.Errors,
		Dropped:  ds.Dropped - prev.Dropped,
	}
}

type decode struct {
	sample DecodeSample
	parent Decode
}

// NewDecode 创建解码计数
func NewDecode() Decode {
	return &decode{}
}

// NewChildDecode 创建子计数，它会把自己的计数累加到 parent 上
func NewChildDecode(parent Decode) Decode {
	return &decode{parent: parent}
}

func (d *decode) AddFrame(size int64) {
	atomic.AddInt64(&d.sample.Frames, 1)
	atomic.AddInt64(&d.sample.Bytes, size)
	if d.parent != nil {
		d.parent.AddFrame(size)
	}
}

func (d *decode) AddPicture() {
	atomic.AddInt64(&d.sample.Pictures, 1)
	if d.parent != nil {
		d.parent.AddPicture()
	}
}

func (d *decode) AddOutput() {
	atomic.AddInt64(&d.sample.Outputs, 1)
	if d.parent != nil {
		d.parent.AddOutput()
	}
}

func (d *decode) AddError() {
	atomic.AddInt64(&d.sample.Errors, 1)
	if d.parent != nil {
		d.parent.AddError()
	}
}

func (d *decode) AddDropped() {
	atomic.AddInt64(&d.sample.Dropped, 1)
	if d.parent != nil {
		d.parent.AddDropped()
	}
}

func (d *decode) GetSample() DecodeSample {
	return d.sample.clone()
}
