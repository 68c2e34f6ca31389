// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package avs2test builds small syntactically valid AVS2 streams for
// tests of the packages layered above the decoder.
package avs2test

import (
	"github.com/cnotch/avs2probe/av/codec/avs2"
	"github.com/cnotch/avs2probe/utils/bits"
)

// 序列头中的 RCS 索引
const (
	rcsFirstIntra = 0 // 不参考、不移除
	rcsInter      = 1 // 参考并移除前一帧
	rcsIntra      = 2 // 只移除前一帧
)

// Sequence 描述生成的码流
type Sequence struct {
	Width, Height int
	FrameRateCode uint8 // 3: 25fps
	LowDelay      bool
	OutputDelay   int // 非低延迟时每帧的输出延迟
	GOP           int // 帧内图像间隔，0 表示只有第一帧
}

// Default 352x288 25fps 的低延迟码流
func Default() Sequence {
	return Sequence{Width: 352, Height: 288, FrameRateCode: 3, LowDelay: true}
}

// Unit 给载荷加上起始码
func Unit(code byte, payload []byte) []byte {
	return append([]byte{0x00, 0x00, 0x01, code}, payload...)
}

// Slice 构造位于 LCU 行 y 的片，片数据是假的熵编码数据
func Slice(y byte) []byte {
	return []byte{0x00, 0x00, 0x01, y, 0x00, 0xaa, 0xbb, 0xcc}
}

// Header 返回带起始码的序列头
func (s Sequence) Header() []byte {
	w := bits.NewWriter(64)
	w.Write(uint64(avs2.ProfileMain), 8)
	w.Write(uint64(avs2.Level6_0_30), 8)
	w.WriteBool(true)  // progressive_sequence
	w.WriteBool(false) // field_coded_sequence
	w.Write(uint64(s.Width), 14)
	w.Write(uint64(s.Height), 14)
	w.Write(uint64(avs2.Chroma420), 2)
	w.Write(1, 3) // 8 bit
	w.Write(uint64(avs2.SAR1x1), 4)
	w.Write(uint64(s.FrameRateCode), 4)
	w.Write(0x3ffff, 18) // bit_rate_lower
	w.WriteBit(1)
	w.Write(0x0ff, 12)
	w.WriteBool(s.LowDelay)
	w.WriteBit(1)
	w.WriteBool(false)   // temporal_id_enable_flag
	w.Write(0x2aaaa, 18) // bbv_buffer_size
	w.Write(6, 3)        // lcu 64
	w.WriteBool(false)   // weight_quant_enable
	w.WriteBool(true)    // scene_picture_disable
	w.WriteBool(true)    // multi_hypothesis_skip
	w.WriteBool(false)   // dual_hypothesis_prediction
	w.WriteBool(true)    // weighted_skip
	w.WriteBool(true)    // asymmetric_motion_partitions
	w.WriteBool(false)   // nonsquare_quadtree_transform
	w.WriteBool(false)   // nonsquare_intra_prediction
	w.WriteBool(true)    // secondary_transform
	w.WriteBool(false)   // sample_adaptive_offset
	w.WriteBool(false)   // adaptive_loop_filter
	w.WriteBool(true)    // pmvr
	w.WriteBit(1)

	rcs := []avs2.RefConfigSet{
		rcsFirstIntra: {RefByOthers: true},
		rcsInter:      {RefByOthers: true, NumRef: 1, RefDelta: [8]uint8{1}, NumRemove: 1, RemoveDelta: [8]uint8{1}},
		rcsIntra:      {RefByOthers: true, NumRemove: 1, RemoveDelta: [8]uint8{1}},
	}
	w.Write(uint64(len(rcs)), 6)
	for i := range rcs {
		writeRCS(w, &rcs[i])
	}
	if !s.LowDelay {
		w.Write(uint64(s.OutputDelay), 5) // output_reorder_delay
	}
	w.WriteBool(true) // cross_slice_loopfilter
	w.Write(3, 2)
	w.Align()
	return Unit(0xb0, w.Bytes())
}

func writeRCS(w *bits.Writer, rcs *avs2.RefConfigSet) {
	w.WriteBool(rcs.RefByOthers)
	w.Write(uint64(rcs.NumRef), 3)
	for i := 0; i < rcs.NumRef; i++ {
		w.Write(uint64(rcs.RefDelta[i]), 6)
	}
	w.Write(uint64(rcs.NumRemove), 3)
	for i := 0; i < rcs.NumRemove; i++ {
		w.Write(uint64(rcs.RemoveDelta[i]), 6)
	}
	w.WriteBit(1)
}

// Picture 返回第 n 幅图像（解码顺序）的图像头，带起始码
func (s Sequence) Picture(n int) []byte {
	intra := s.IsIntra(n)
	w := bits.NewWriter(32)
	w.Write(0xffffffff, 32) // bbv_delay
	if intra {
		w.WriteBool(false) // time_code_flag
	} else {
		w.Write(uint64(avs2.CodingTypeP), 2)
	}
	w.Write(uint64(uint8(n)), 8) // doi
	if !s.LowDelay {
		w.WriteUe(uint32(s.OutputDelay))
	}

	w.WriteBool(true) // 使用序列头中的 RCS
	switch {
	case n == 0:
		w.Write(rcsFirstIntra, 5)
	case intra:
		w.Write(rcsIntra, 5)
	default:
		w.Write(rcsInter, 5)
	}
	if s.LowDelay {
		w.WriteUe(2) // bbv_check_times
	}
	w.WriteBool(true)  // progressive_frame
	w.WriteBool(true)  // top_field_first
	w.WriteBool(false) // repeat_first_field
	w.WriteBool(true)  // fixed_picture_qp
	w.Write(32, 7)
	if !intra {
		w.WriteBit(1)
		w.WriteBool(true) // random_access_decodable
	}
	w.WriteBool(false) // loop_filter_disable
	w.WriteBool(false) // loop_filter_parameter_flag
	w.WriteBool(true)  // chroma_quant_param_disable
	w.Align()
	w.Write(0xff, 8)

	code := byte(0xb6)
	if intra {
		code = 0xb3
	}
	return Unit(code, w.Bytes())
}

// IsIntra 第 n 幅图像是否为帧内图像
func (s Sequence) IsIntra(n int) bool {
	if s.GOP <= 0 {
		return n == 0
	}
	return n%s.GOP == 0
}

// AccessUnit 返回第 n 个访问单元，帧内图像前带序列头
func (s Sequence) AccessUnit(n int) []byte {
	var au []byte
	if s.IsIntra(n) {
		au = append(au, s.Header()...)
	}
	au = append(au, s.Picture(n)...)
	au = append(au, Slice(0)...)
	return au
}

// Stream 连续的 n 个访问单元，以序列结束码结尾
func (s Sequence) Stream(n int) []byte {
	var stream []byte
	for i := 0; i < n; i++ {
		stream = append(stream, s.AccessUnit(i)...)
	}
	return append(stream, Unit(0xb1, nil)...)
}
