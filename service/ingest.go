// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"bufio"
	"io"
	"net"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/format/rtp"
	"github.com/cnotch/avs2probe/config"
	"github.com/cnotch/avs2probe/network"
	"github.com/cnotch/avs2probe/network/socket/buffered"
	"github.com/cnotch/avs2probe/probe"
	"github.com/cnotch/avs2probe/stats"
	"github.com/cnotch/xlog"
)

// probeOptions 按配置生成会话选项
func probeOptions(logger *xlog.Logger) []probe.Option {
	pc := config.Probe()
	return []probe.Option{
		probe.Logger(logger),
		probe.Fake(pc.Pipeline == "fake"),
		probe.Record(pc.Record),
		probe.History(pc.History),
		probe.Buffers(pc.MaxBuffers, pc.MaxBufferMB<<20),
		probe.RateLimit(pc.RateLimit),
		probe.Salt(pc.Salt),
	}
}

// onAccept 当新的 rtp over tcp 推流连接接入时触发
func (s *Service) onAccept(c net.Conn) {
	go s.ingestConn(c, "tcp://"+c.RemoteAddr().String())
}

// ingestConn 读取 `$` 交织格式的 rtp 包直到连接关闭
func (s *Service) ingestConn(c net.Conn, source string) {
	defer c.Close()

	stats.IngestConns.Add()
	defer stats.IngestConns.Release()

	if max := config.Probe().MaxSessions; max > 0 {
		if _, running := probe.Count(); running >= max {
			stats.IngestConns.Reject()
			s.logger.Warnf("reject ingest %s: %d sessions running", source, running)
			return
		}
	}

	logger := s.logger.With(xlog.Fields(
		xlog.F("ingest", source),
		xlog.F("ip", network.AddrIP(c.RemoteAddr()).String())))
	p := probe.NewProbe(source, probeOptions(logger)...)
	probe.Regist(p, config.Retention())
	defer p.Close()

	demuxer, err := rtp.NewDemuxer(&codec.VideoMeta{Codec: "AVS2"}, p, logger)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	p.SetLossCounter(demuxer.Loss)
	defer demuxer.Close()

	conn := buffered.NewConn(c,
		buffered.BufferSize(config.NetBufferSize()),
		buffered.ReadTimeout(config.NetTimeout()))
	logger.Infof("ingest started, token = %s", p.Token())
	if err = readPackets(conn.Reader(), demuxer); err != nil {
		logger.Warnf("ingest stopped: %v", err)
	} else {
		logger.Infof("ingest finished, received %d bytes", conn.Received())
	}
}

// readPackets 读取 rtp 包写入 w，忽略未配置的通道
func readPackets(r *bufio.Reader, w rtp.PacketWriter) error {
	for {
		packet, err := rtp.ReadPacket(r, rtp.DefaultChannelConfig)
		if err == rtp.ErrChannel {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err = w.WriteRtpPacket(packet); err != nil {
			return err
		}
	}
}
