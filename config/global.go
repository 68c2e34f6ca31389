// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	cfg "github.com/cnotch/loader"
	"github.com/cnotch/xlog"
)

// 服务名
const (
	Vendor  = "CAOHONGJU"
	Name    = "avs2probe"
	Version = "V1.0.0"
)

var (
	globalC *config
)

// InitConfig 初始化 Config
func InitConfig() {
	exe, err := os.Executable()
	if err != nil {
		xlog.Panic(err.Error())
	}

	configPath := filepath.Join(filepath.Dir(exe), Name+".conf")

	globalC = new(config)
	globalC.initFlags()

	// 创建或加载配置文件
	if err := cfg.Load(globalC,
		&cfg.JSONLoader{Path: configPath, CreatedIfNonExsit: true},
		&cfg.EnvLoader{Prefix: strings.ToUpper(Name)},
		&cfg.FlagLoader{}); err != nil {
		// 异常，直接退出
		xlog.Panic(err.Error())
	}

	// 初始化日志
	globalC.Log.initLogger()
}

// Addr Listen addr
func Addr() string {
	if globalC == nil {
		return ":1554"
	}
	return globalC.ListenAddr
}

// IngestAddr RTP over TCP 推流侦听地址
func IngestAddr() string {
	if globalC == nil {
		return ""
	}
	return globalC.IngestAddr
}

// Profile 是否启动 Http Profile
func Profile() bool {
	if globalC == nil {
		return false
	}
	return globalC.Profile
}

// GetTLSConfig 获取TLSConfig
func GetTLSConfig() *TLSConfig {
	if globalC == nil {
		return nil
	}
	return globalC.TLS
}

// Probe 解码会话配置
func Probe() ProbeConfig {
	if globalC == nil {
		return ProbeConfig{Pipeline: "fake", History: 32, MaxSessions: 64, Retention: 5, Salt: Name}
	}
	return globalC.Probe
}

// Input 离线分析的输入
func Input() InputConfig {
	if globalC == nil {
		return InputConfig{}
	}
	return globalC.Input
}

// NetTimeout 返回网络超时设置
func NetTimeout() time.Duration {
	return time.Second * 45
}

// NetBufferSize 网络通讯时的BufferSize
func NetBufferSize() int {
	return 128 * 1024
}

// Retention 会话报告保留时长
func Retention() time.Duration {
	minutes := Probe().Retention
	if minutes <= 0 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}
