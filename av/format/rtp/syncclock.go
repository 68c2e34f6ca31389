// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	jan1970     = 0x83aa7e80 // 1900 到 1970 的秒数
	rtcpTypeSR  = 200
	rtcpSRBytes = 20
)

// SyncClock 用 RTCP SR 把 RTP 时间戳映射到绝对时间。
type SyncClock struct {
	// SR 发送时的 NTP 时间，转换成自 1970 以来的纳秒数
	NTPTime int64
	// 与 NTPTime 对应的 RTP 时间戳
	RTPTime     uint32
	RTPTimeUnit float64 // 每个 RTP 时间单位的纳秒数

	initOn time.Time
}

// Init 初始化同步时钟，clockRate 为 RTP 时钟频率
func (sc *SyncClock) Init(clockRate int) {
	sc.initOn = time.Now()
	sc.RTPTimeUnit = float64(time.Second) / float64(clockRate)
}

// Anchor 在收到 SR 之前，以 rtptime 作为相对时间的零点
func (sc *SyncClock) Anchor(rtptime uint32) {
	sc.RTPTime = rtptime
}

// Synced 是否已收到 SR
func (sc *SyncClock) Synced() bool {
	return sc.NTPTime != 0
}

// LocalTime 本地时间
func (sc *SyncClock) LocalTime() time.Time {
	return time.Unix(0, sc.NTPTime).In(time.Local)
}

// Decode 解析 RTCP 复合包开头的 SR
func (sc *SyncClock) Decode(data []byte) (ok bool) {
	if len(data) < rtcpSRBytes || data[1] != rtcpTypeSR {
		return false
	}

	msw := binary.BigEndian.Uint32(data[8:])
	lsw := binary.BigEndian.Uint32(data[12:])
	sc.RTPTime = binary.BigEndian.Uint32(data[16:])
	sc.NTPTime = int64(msw-jan1970)*int64(time.Second) + (int64(lsw)*1000_000_000)>>32
	return true
}

// RelativeNtpNow 自 Init 以来的时间
func (sc *SyncClock) RelativeNtpNow() int64 {
	return int64(time.Since(sc.initOn))
}

// RelativeNtp 相对 RTPTime 的时间，RTP 时间戳回绕按有符号差值处理
func (sc *SyncClock) RelativeNtp(rtptime uint32) int64 {
	diff := int32(rtptime - sc.RTPTime)
	return int64(math.Round(float64(diff) * sc.RTPTimeUnit))
}

// AbsoluteNtp rtptime 对应的绝对时间
func (sc *SyncClock) AbsoluteNtp(rtptime uint32) int64 {
	return sc.NTPTime + sc.RelativeNtp(rtptime)
}
