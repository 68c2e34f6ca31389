// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"sync/atomic"
	"time"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/codec/avs2"
	"github.com/cnotch/avs2probe/utils"
)

// DefaultClockRate 视频 RTP 时钟频率
const DefaultClockRate = 90000

// avs2Depacketizer 把同一时间戳的 RTP 载荷拼接为一个访问单元。
// 载荷就是带起始码的基本流片段，M 位标识访问单元的最后一个包。
type avs2Depacketizer struct {
	fragments []*Packet
	meta      *codec.VideoMeta
	metaReady bool
	nextDts   float64
	dtsStep   float64
	anchored  bool
	w         codec.FrameWriter
	syncClock SyncClock

	lastSeq   uint16
	seqValid  bool
	skipping  bool // 丢弃 skipTs 的剩余包
	skipTs    uint32
	extraSent bool

	lost      int64
	discarded int64
}

// NewAvs2Depacketizer 实例化 AVS2 帧提取器
func NewAvs2Depacketizer(meta *codec.VideoMeta, w codec.FrameWriter) Depacketizer {
	if meta.ClockRate <= 0 {
		meta.ClockRate = DefaultClockRate
	}
	dp := &avs2Depacketizer{
		meta:      meta,
		fragments: make([]*Packet, 0, 16),
		w:         w,
	}
	dp.syncClock.Init(meta.ClockRate)
	return dp
}

func (dp *avs2Depacketizer) Control(basePts *int64, p *Packet) error {
	if ok := dp.syncClock.Decode(p.Data); ok {
		if *basePts == 0 {
			*basePts = dp.syncClock.NTPTime
		}
	}
	return nil
}

func (dp *avs2Depacketizer) Depacketize(basePts int64, packet *Packet) (err error) {
	if !dp.anchored && !dp.syncClock.Synced() {
		dp.syncClock.Anchor(packet.Timestamp)
	}
	dp.anchored = true

	if dp.seqValid && packet.SequenceNumber != dp.lastSeq+1 {
		if gap := packet.SequenceNumber - dp.lastSeq - 1; gap < 0x8000 {
			atomic.AddInt64(&dp.lost, int64(gap))
		}
		dp.discard(packet.Timestamp)
	}
	dp.lastSeq, dp.seqValid = packet.SequenceNumber, true

	if dp.skipping {
		if packet.Timestamp == dp.skipTs {
			if packet.Marker {
				dp.skipping = false
			}
			return
		}
		dp.skipping = false
	}

	if len(dp.fragments) > 0 && dp.fragments[0].Timestamp != packet.Timestamp {
		// 前一个单元缺少 M 位，按时间戳切分
		if err = dp.flush(basePts); err != nil {
			return
		}
	}

	payload := packet.Payload()
	if len(dp.fragments) == 0 {
		if len(payload) == 0 {
			return
		}
		if !startsAccessUnit(payload) {
			atomic.AddInt64(&dp.discarded, 1)
			if !packet.Marker {
				dp.skipping, dp.skipTs = true, packet.Timestamp
			}
			return
		}
	}

	dp.fragments = append(dp.fragments, packet)
	if packet.Marker {
		err = dp.flush(basePts)
	}
	return
}

// discard 丢包后清除未完成的单元；丢包发生在 ts 单元内部时丢弃它的剩余包
func (dp *avs2Depacketizer) discard(ts uint32) {
	if len(dp.fragments) == 0 {
		return
	}
	if dp.fragments[0].Timestamp == ts {
		dp.skipping, dp.skipTs = true, ts
	}
	atomic.AddInt64(&dp.discarded, 1)
	dp.fragments = dp.fragments[:0]
}

func (dp *avs2Depacketizer) flush(basePts int64) error {
	size := 0
	for _, fragment := range dp.fragments {
		size += len(fragment.Payload())
	}

	frame := &codec.Frame{
		MediaType: codec.MediaTypeVideo,
		Payload:   make([]byte, 0, size),
	}
	for _, fragment := range dp.fragments {
		frame.Payload = append(frame.Payload, fragment.Payload()...)
	}
	rtpTimestamp := dp.fragments[0].Timestamp
	dp.fragments = dp.fragments[:0]

	return dp.writeFrame(basePts, rtpTimestamp, frame)
}

func (dp *avs2Depacketizer) writeFrame(basePts int64, rtpTimestamp uint32, frame *codec.Frame) error {
	if !dp.extraSent {
		dp.extraSent = true
		if len(dp.meta.Extradata) > 0 {
			frame.NewExtradata = dp.meta.Extradata
		}
	}

	if !dp.metaReady {
		if !avs2.MetadataIsReady(dp.meta) {
			// 带外没有序列头，从码流中获取
			if seq, err := avs2.SeqHeaderFromExtradata(frame.Payload); err == nil {
				avs2.FillMetadata(dp.meta, seq)
			}
		}
		if dp.meta.Width > 0 {
			if dp.meta.FrameRate > 0 {
				dp.dtsStep = float64(time.Second) / dp.meta.FrameRate
			}
			dp.metaReady = true
		}
	}

	if dp.syncClock.Synced() && basePts != 0 {
		frame.Pts = dp.syncClock.AbsoluteNtp(rtpTimestamp) - basePts + ptsDelay
	} else {
		frame.Pts = dp.syncClock.RelativeNtp(rtpTimestamp) + ptsDelay
	}
	if dp.dtsStep > 0 {
		frame.Dts = int64(dp.nextDts)
		dp.nextDts += dp.dtsStep
	} else {
		frame.Dts = frame.Pts
	}
	return dp.w.WriteFrame(frame)
}

func (dp *avs2Depacketizer) Loss() (lost, discarded int64) {
	return atomic.LoadInt64(&dp.lost), atomic.LoadInt64(&dp.discarded)
}

// startsAccessUnit 访问单元以序列头、用户数据、扩展或图像头开始，不会是片
func startsAccessUnit(payload []byte) bool {
	next, code, ok := utils.FindStartCode(payload, 0)
	return ok && next == 4 && avs2.IsValidStartCode(code) && !avs2.IsSliceStartCode(code)
}
