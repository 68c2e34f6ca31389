// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
)

// config 服务配置
type config struct {
	ListenAddr string      `json:"listen"`        // HTTP API 侦听地址和端口
	IngestAddr string      `json:"ingest"`        // RTP over TCP 推流侦听地址，空则不启用
	Profile    bool        `json:"profile"`       // 是否启动Profile
	TLS        *TLSConfig  `json:"tls,omitempty"` // https安全端口交互
	Probe      ProbeConfig `json:"probe"`         // 解码会话配置
	Input      InputConfig `json:"-"`             // 离线分析的输入，只来自命令行
	Log        LogConfig   `json:"log"`           // 日志配置
}

func (c *config) initFlags() {
	flag.StringVar(&c.ListenAddr, "listen", ":1554", "Set http api listen address")
	flag.StringVar(&c.IngestAddr, "ingest", "", "Set rtp over tcp ingest listen address")
	flag.BoolVar(&c.Profile, "pprof", false,
		"Determines if profile enabled")

	c.Probe.initFlags()
	c.Input.initFlags()
	// 初始化日志配置
	c.Log.initFlags()
}
