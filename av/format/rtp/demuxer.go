// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
)

// 网络播放时 PTS（Presentation Time Stamp）的延时
const (
	ptsDelay = int64(time.Second)
)

// Depacketizer 解包器
type Depacketizer interface {
	Control(basePts *int64, p *Packet) error
	Depacketize(basePts int64, p *Packet) error
}

type lossCounter interface {
	Loss() (lost, discarded int64)
}

// 关闭标记，排在它之前的包都会被处理
type closeMark struct{}

// Demuxer 在独立的 goroutine 中把 rtp.Packet 转换成帧
type Demuxer struct {
	closeOnce sync.Once
	done      chan struct{}
	recvQueue *queue.SyncQueue
	vdp       Depacketizer
	logger    *xlog.Logger
}

// NewDemuxer 创建 rtp.Packet 解封装处理器。
func NewDemuxer(video *codec.VideoMeta, fw codec.FrameWriter, logger *xlog.Logger) (*Demuxer, error) {
	demuxer := &Demuxer{
		done:      make(chan struct{}),
		recvQueue: queue.NewSyncQueue(),
		logger:    logger,
	}

	switch strings.ToUpper(video.Codec) {
	case "AVS2":
		demuxer.vdp = NewAvs2Depacketizer(video, fw)
	default:
		return nil, fmt.Errorf("rtp demuxer unsupport video codec type:%s", video.Codec)
	}

	go demuxer.process()
	return demuxer, nil
}

func (demuxer *Demuxer) process() {
	defer func() {
		defer func() { // 避免 handler 再 panic
			recover()
		}()

		if r := recover(); r != nil {
			demuxer.logger.Errorf("rtp demuxer routine panic；r = %v \n %s", r, debug.Stack())
		}

		// 尽早通知GC，回收内存
		demuxer.recvQueue.Reset()
		close(demuxer.done)
	}()

	var basePts int64
	for {
		p := demuxer.recvQueue.Pop()
		if p == nil {
			continue
		}

		packet, ok := p.(*Packet)
		if !ok { // closeMark
			return
		}

		var err error
		switch packet.Channel {
		case ChannelVideo:
			err = demuxer.vdp.Depacketize(basePts, packet)
		case ChannelVideoControl:
			err = demuxer.vdp.Control(&basePts, packet)
		}

		if err != nil {
			demuxer.logger.Errorf("rtp demuxer: depacketize rtp frame error :%s", err.Error())
		}
	}
}

// Close 处理完已接收的包后关闭
func (demuxer *Demuxer) Close() error {
	demuxer.closeOnce.Do(func() {
		demuxer.recvQueue.Push(closeMark{})
	})
	<-demuxer.done
	return nil
}

// WriteRtpPacket 投递一个包，处理是异步的
func (demuxer *Demuxer) WriteRtpPacket(packet *Packet) error {
	demuxer.recvQueue.Push(packet)
	return nil
}

// Loss 返回丢失的包数和因此丢弃的访问单元数
func (demuxer *Demuxer) Loss() (lost, discarded int64) {
	if lc, ok := demuxer.vdp.(lossCounter); ok {
		return lc.Loss()
	}
	return 0, 0
}
