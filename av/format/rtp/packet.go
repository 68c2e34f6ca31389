// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/pion/rtp"
)

const (
	// TransferPrefix RTP 包交织传输时的前缀
	TransferPrefix = byte(0x24) // $
)

// 预定义 RTP 通道类型，只处理视频
const (
	ChannelVideo        = iota // 视频通道
	ChannelVideoControl        // 视频控制通道
	ChannelCount               // 支持的 RTP 通道类型数量
)

// DefaultChannelConfig 默认的通道配置，RTSP 交织模式下视频使用 0/1
var DefaultChannelConfig = []int{
	ChannelVideo,
	ChannelVideoControl,
}

// 错误
var (
	ErrPrefix  = errors.New("rtp: interleaved packet must start with `$`")
	ErrChannel = errors.New("rtp: illegal channel")
)

// ChannelName 通道名
func ChannelName(channel int) string {
	switch channel {
	case ChannelVideo:
		return "video"
	case ChannelVideoControl:
		return "video control"
	}
	return "unknow"
}

// Packet RTP 数据包
type Packet struct {
	Channel    byte   // 通道类型
	Data       []byte // 原始数据
	rtp.Header        // 仅视频通道有效
}

// PacketWriter 包装 WriteRtpPacket 方法的接口
type PacketWriter interface {
	WriteRtpPacket(packet *Packet) error
}

// NewPacket 从一个完整的 RTP（或 RTCP）报文创建数据包。
func NewPacket(channel byte, data []byte) (*Packet, error) {
	p := &Packet{Channel: channel, Data: data}
	switch channel {
	case ChannelVideo:
		if err := p.Header.Unmarshal(data); err != nil {
			return nil, err
		}
	case ChannelVideoControl:
	default:
		return nil, ErrChannel
	}
	return p, nil
}

// ReadPacket 从 r 中读取 `$` 交织格式的 rtp 包。
// channelConfig 给出每种通道类型所在的通道号；
// 未配置的通道返回 ErrChannel，调用者可以忽略后继续读取。
func ReadPacket(r *bufio.Reader, channelConfig []int) (*Packet, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	if prefix[0] != TransferPrefix {
		return nil, ErrPrefix
	}

	channel := int(prefix[1])
	data := make([]byte, int(binary.BigEndian.Uint16(prefix[2:])))
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	for i, v := range channelConfig {
		if v == channel {
			return NewPacket(byte(i), data)
		}
	}
	return nil, ErrChannel
}

// Write 将 RTP 包以交织格式输出到 w
func (p *Packet) Write(w io.Writer, channelConfig []int) error {
	if int(p.Channel) >= len(channelConfig) {
		return ErrChannel
	}

	ch := channelConfig[p.Channel]
	if ch < 0 || ch > 255 { // 未订阅，忽略
		return nil
	}

	var prefix [4]byte
	prefix[0] = TransferPrefix
	prefix[1] = byte(ch)
	binary.BigEndian.PutUint16(prefix[2:], uint16(len(p.Data)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

// Size 包交织传输的总大小
func (p *Packet) Size() int {
	return len(p.Data) + 4
}

// Payload 数据包中实际的载荷，控制通道返回nil
func (p *Packet) Payload() []byte {
	if p.Channel != ChannelVideo {
		return nil
	}
	end := len(p.Data)
	if p.Padding && end > p.PayloadOffset {
		// 最后一个字节是填充长度
		end -= int(p.Data[end-1])
		if end < p.PayloadOffset {
			end = p.PayloadOffset
		}
	}
	return p.Data[p.PayloadOffset:end]
}
