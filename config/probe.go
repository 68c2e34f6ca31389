// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
)

// ProbeConfig 解码会话配置
type ProbeConfig struct {
	// Pipeline 像素流水线: none, fake
	Pipeline string `json:"pipeline"`
	// Record 每个会话记录的图像参数数量，0 不记录
	Record int `json:"record"`
	// History 保留的最近输出图像数量
	History int `json:"history"`
	// MaxBuffers 每个会话同时存活的像素缓冲上限，0 使用 DPB 槽位数
	MaxBuffers int `json:"maxbuffers"`
	// MaxBufferMB 单个像素缓冲的上限，单位 MB，0 使用默认值
	MaxBufferMB int `json:"maxbuffermb"`
	// RateLimit 每个会话每秒最多解码的访问单元，0 不限制
	RateLimit int `json:"ratelimit"`
	// MaxSessions 同时解码的推流会话上限
	MaxSessions int `json:"maxsessions"`
	// Retention 会话结束后报告保留的分钟数
	Retention int `json:"retention"`
	// Salt 生成会话令牌的盐
	Salt string `json:"salt"`
}

func (c *ProbeConfig) initFlags() {
	flag.StringVar(&c.Pipeline, "pipeline", "fake",
		"Set the pixel pipeline: none or fake")
	flag.IntVar(&c.Record, "record", 16,
		"Set the number of picture parameter sets recorded per session")
	flag.IntVar(&c.History, "history", 32,
		"Set the number of output pictures kept per session")
	flag.IntVar(&c.MaxBuffers, "maxbuffers", 0,
		"Set the maximum live pixel buffers per session")
	flag.IntVar(&c.MaxBufferMB, "maxbuffermb", 0,
		"Set the maximum size in megabytes of one pixel buffer")
	flag.IntVar(&c.RateLimit, "ratelimit", 0,
		"Set the maximum access units per second decoded per session")
	flag.IntVar(&c.MaxSessions, "maxsessions", 64,
		"Set the maximum concurrent ingest sessions")
	flag.IntVar(&c.Retention, "retention", 5,
		"Set the minutes a finished session report is retained")
	flag.StringVar(&c.Salt, "salt", Name,
		"Set the salt of session tokens")
}

// InputConfig 离线分析的输入
type InputConfig struct {
	ES       string // AVS2 基本流文件
	RTP      string // `$` 交织格式的 RTP 转储文件
	SDP      string // RTP 转储对应的 sdp 文件
	Report   string // 报告输出文件，空则输出到标准输出
	Realtime bool   // 按帧率节奏读取
}

func (c *InputConfig) initFlags() {
	flag.StringVar(&c.ES, "es", "", "Probe an AVS2 elementary stream file and exit")
	flag.StringVar(&c.RTP, "rtp", "", "Probe an interleaved rtp dump file and exit")
	flag.StringVar(&c.SDP, "sdp", "", "Set the sdp file describing the rtp dump")
	flag.StringVar(&c.Report, "report", "", "Set the file the probe report is written to")
	flag.BoolVar(&c.Realtime, "realtime", false, "Determines if the input is paced by its frame rate")
}

// Offline 是否离线分析
func (c *InputConfig) Offline() bool {
	return c.ES != "" || c.RTP != ""
}
