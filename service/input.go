// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"bufio"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/codec/avs2"
	"github.com/cnotch/avs2probe/av/format/es"
	"github.com/cnotch/avs2probe/av/format/rtp"
	"github.com/cnotch/avs2probe/av/format/sdp"
	"github.com/cnotch/avs2probe/config"
	"github.com/cnotch/avs2probe/probe"
	"github.com/cnotch/avs2probe/utils"
	"github.com/cnotch/xlog"
)

// ErrNoInput 没有离线输入
var ErrNoInput = errors.New("no es or rtp input")

// RunOffline 分析离线输入，报告写到 input.Report，未指定时写到标准输出
func RunOffline(input config.InputConfig, logger *xlog.Logger) error {
	var p *probe.Probe
	var err error

	switch {
	case input.ES != "":
		p, err = probeFile(input.ES, func(f *os.File, p *probe.Probe) error {
			return ProbeES(f, p, input.Realtime)
		}, logger)
	case input.RTP != "":
		var rawsdp []byte
		if input.SDP != "" {
			if rawsdp, err = ioutil.ReadFile(input.SDP); err != nil {
				return err
			}
		}
		p, err = probeFile(input.RTP, func(f *os.File, p *probe.Probe) error {
			return ProbeRTPDump(f, string(rawsdp), p, input.Realtime)
		}, logger)
	default:
		return ErrNoInput
	}
	if err != nil {
		return err
	}

	report := p.Report(true)
	if input.Report == "" {
		return utils.EncodeJSON(os.Stdout, report)
	}
	return utils.EncodeJSONFile(input.Report, report)
}

func probeFile(path string, feed func(f *os.File, p *probe.Probe) error, logger *xlog.Logger) (*probe.Probe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := probe.NewProbe("file://"+path, probeOptions(logger)...)
	err = feed(f, p)
	p.Close()
	return p, err
}

// ProbeES 把 AVS2 基本流切分成访问单元送入 p，读完后返回；
// 调用者负责关闭 p。
func ProbeES(r io.Reader, p *probe.Probe, realtime bool) error {
	reader := es.NewReader(r)
	var w codec.FrameWriter = p
	if realtime {
		w = &pacer{w: p}
	}

	for first := true; ; first = false {
		frame, err := reader.ReadFrame()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if first {
			// 第一个访问单元通常带有序列头，用它的帧率生成时间戳
			if seq, err := avs2.SeqHeaderFromExtradata(frame.Payload); err == nil {
				reader.SetFrameRate(seq.FrameRate())
			}
		}
		if err = w.WriteFrame(frame); err != nil {
			return err
		}
	}
}

// ProbeRTPDump 把 `$` 交织格式的 rtp 转储送入 p，rawsdp 可以为空；
// 调用者负责关闭 p。
func ProbeRTPDump(r io.Reader, rawsdp string, p *probe.Probe, realtime bool) error {
	video := codec.VideoMeta{Codec: "AVS2"}
	if rawsdp != "" {
		if err := sdp.ParseMetadata(rawsdp, &video); err != nil {
			return err
		}
		p.SetVideoMeta(video)
	}

	var w codec.FrameWriter = p
	if realtime {
		w = &pacer{w: p}
	}

	demuxer, err := rtp.NewDemuxer(&video, w, xlog.L())
	if err != nil {
		return err
	}
	p.SetLossCounter(demuxer.Loss)

	err = readPackets(bufio.NewReader(r), demuxer)
	// 等待缓存的包处理完
	demuxer.Close()
	return err
}

// pacer 按 Dts 的节奏写帧
type pacer struct {
	w       codec.FrameWriter
	start   time.Time
	baseDts int64
	started bool
}

func (pc *pacer) WriteFrame(frame *codec.Frame) error {
	if !pc.started {
		pc.started = true
		pc.start = time.Now()
		pc.baseDts = frame.Dts
	} else if d := time.Duration(frame.Dts-pc.baseDts) - time.Since(pc.start); d > 0 {
		time.Sleep(d)
	}
	return pc.w.WriteFrame(frame)
}
