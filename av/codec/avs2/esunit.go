// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"fmt"
	"strings"

	"github.com/cnotch/avs2probe/utils"
	"github.com/cnotch/xlog"
)

const unitBatch = 4

// ESUnit 基本流单元，总是引用调用方的包缓冲，不拥有数据
type ESUnit struct {
	StartCode uint32
	Offset    int // 起始码之后的载荷位置；片单元从起始码最后一个字节开始
	Length    int
}

// Payload returns the unit bytes within the packet it was split from.
func (u ESUnit) Payload(pkt []byte) []byte {
	return pkt[u.Offset : u.Offset+u.Length]
}

// IsSlice reports whether the unit is slice data.
func (u ESUnit) IsSlice() bool {
	return IsSliceStartCode(u.StartCode)
}

// Splitter splits packets into ESUnits, reusing its unit list between calls.
type Splitter struct {
	units  []ESUnit
	logger *xlog.Logger
}

// NewSplitter creates a Splitter.
func NewSplitter(logger *xlog.Logger) *Splitter {
	if logger == nil {
		logger = xlog.L()
	}
	return &Splitter{logger: logger}
}

// Split splits data into start code delimited units. Each unit's length
// excludes the start code of the unit that follows it.
func (s *Splitter) Split(data []byte) ([]ESUnit, error) {
	s.units = s.units[:0]

	pos := 0
	for len(data)-pos >= 4 {
		next, code, ok := utils.FindStartCode(data, pos)
		if !ok {
			break
		}
		if !IsValidStartCode(code) {
			s.logger.Errorf("invalid start code 0x%08x @%d", code, next)
			return nil, invalidf("start code 0x%08x @%d", code, next)
		}

		validSlice := 0
		if IsSliceStartCode(code) {
			// 片的起始码最后一个字节包含位置信息，保留在载荷中
			validSlice = 1
			next--
		}

		if len(s.units) == cap(s.units) {
			grown := make([]ESUnit, len(s.units), len(s.units)+unitBatch)
			copy(grown, s.units)
			s.units = grown
		}

		unit := ESUnit{
			StartCode: code,
			Offset:    next,
			Length:    len(data) - next,
		}
		if n := len(s.units); n > 0 {
			s.units[n-1].Length -= 4 + unit.Length - validSlice
		}
		s.units = append(s.units, unit)
		pos = next
	}

	if len(s.units) == 0 {
		s.logger.Error("no start code found in packet")
		return nil, invalidf("no start code in %d bytes", len(data))
	}

	if first := s.units[0].Offset - 4; first > 0 {
		s.logger.Warnf("first start code @%d doesn't start from pos 0", first)
	}

	if s.logger.LevelEnabled(xlog.DebugLevel) {
		var sb strings.Builder
		for _, u := range s.units {
			fmt.Fprintf(&sb, " [%02X]..%d..", byte(u.StartCode), u.Length)
		}
		s.logger.Debugf("pkt size=%d, units=%d:%s", len(data), len(s.units), sb.String())
	}
	return s.units, nil
}

// SplitPacket splits data with a temporary Splitter.
func SplitPacket(data []byte, logger *xlog.Logger) ([]ESUnit, error) {
	return NewSplitter(logger).Split(data)
}
