// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"time"

	"github.com/cnotch/avs2probe/av/codec/avs2"
	"github.com/cnotch/xlog"
	"github.com/kelindar/rate"
)

// Option 配置 Probe 的选项接口
type Option interface {
	apply(*Probe)
}

// optionFunc 包装函数以便它满足 Option 接口
type optionFunc func(*Probe)

func (f optionFunc) apply(p *Probe) {
	f(p)
}

// Logger 日志选项
func Logger(logger *xlog.Logger) Option {
	return optionFunc(func(p *Probe) {
		if logger != nil {
			p.logger = logger
		}
	})
}

// RateLimit 每秒最多解码 n 个访问单元，超出的直接丢弃
func RateLimit(n int) Option {
	return optionFunc(func(p *Probe) {
		if n > 0 {
			p.limiter = rate.New(n, time.Second)
		}
	})
}

// Record 记录最近 n 幅图像的硬件参数
func Record(n int) Option {
	return optionFunc(func(p *Probe) {
		if n > 0 {
			p.recorder = avs2.NewParamsRecorder(n)
		}
	})
}

// History 保留最近 n 幅输出图像的信息
func History(n int) Option {
	return optionFunc(func(p *Probe) {
		if n >= 0 {
			p.history = n
		}
	})
}

// Buffers 像素缓冲池的限制：同时存活的缓冲数和单个缓冲的字节数，0 使用默认值
func Buffers(maxLive, maxBytes int) Option {
	return optionFunc(func(p *Probe) {
		p.pool = avs2.NewBufferPool(maxLive, maxBytes)
	})
}

// Fake 用假的像素流水线填充输出图像
func Fake(enabled bool) Option {
	return optionFunc(func(p *Probe) {
		p.fake = enabled
	})
}

// Salt 生成会话令牌的盐
func Salt(salt string) Option {
	return optionFunc(func(p *Probe) {
		p.salt = salt
	})
}
