// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"sync/atomic"
)

// IngestConns TCP 推流连接统计
var IngestConns = NewConns()

// ConnsSample 连接计数采样
type ConnsSample struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Rejected int64 `json:"rejected"` // 超过并发限制被拒绝
}

// Conns 连接统计
type Conns struct {
	sample ConnsSample
}

// NewConns 新建连接计数
func NewConns() *Conns {
	return &Conns{}
}

// Add 新连接，返回当前活动连接数
func (c *Conns) Add() int64 {
	atomic.AddInt64(&c.sample.Total, 1)
	return atomic.AddInt64(&c.sample.Active, 1)
}

// Release 连接关闭，返回当前活动连接数
func (c *Conns) Release() int64 {
	return atomic.AddInt64(&c.sample.Active, -1)
}

// Reject 记录被拒绝的连接
func (c *Conns) Reject() {
	atomic.AddInt64(&c.sample.Rejected, 1)
}

// GetSample 获取当前时点采样
func (c *Conns) GetSample() ConnsSample {
	return ConnsSample{
		Total:    atomic.LoadInt64(&c.sample.Total),
		Active:   atomic.LoadInt64(&c.sample.Active),
		Rejected: atomic.LoadInt64(&c.sample.Rejected),
	}
}
