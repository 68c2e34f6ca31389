// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"github.com/cnotch/avs2probe/utils/bits"
)

// 测试码流构造。字段取值保证不出现连续 16 个 0 比特，
// 因此载荷中既没有起始码也没有伪起始码。

type seqParams struct {
	profile         Profile
	level           Level
	width, height   int
	chroma          int
	outputDepth     int
	sampleDepth     int
	aspect          AspectRatio
	frameRateCode   uint8
	brLower         uint32
	brUpper         uint32
	lowDelay        bool
	log2LCU         int
	enableWQ        bool
	wqm             *WQMatrix
	disableScenePic bool
	sao             bool
	alf             bool
	rcs             []RefConfigSet
	reorderDelay    int
}

func defaultSeqParams() seqParams {
	return seqParams{
		profile:         ProfileMain,
		level:           Level6_0_30,
		width:           1920,
		height:          1080,
		chroma:          int(Chroma420),
		outputDepth:     8,
		sampleDepth:     8,
		aspect:          DAR16x9,
		frameRateCode:   3,
		brLower:         0x3ffff,
		brUpper:         0x0ff,
		lowDelay:        true,
		log2LCU:         6,
		disableScenePic: true,
		rcs: []RefConfigSet{
			{RefByOthers: true},
			{RefByOthers: true, NumRef: 1, RefDelta: [8]uint8{1}, NumRemove: 1, RemoveDelta: [8]uint8{1}},
		},
	}
}

func writeRCS(w *bits.Writer, rcs *RefConfigSet) {
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

func writeWQM(w *bits.Writer, wqm *WQMatrix) {
	for _, v := range wqm.M44 {
		w.WriteUe(uint32(v))
	}
	for _, v := range wqm.M88 {
		w.WriteUe(uint32(v))
	}
}

func (p seqParams) bytes() []byte {
	w := bits.NewWriter(64)
	w.Write(uint64(p.profile), 8)
	w.Write(uint64(p.level), 8)
	w.WriteBool(true)  // progressive_sequence
	w.WriteBool(false) // field_coded_sequence
	w.Write(uint64(p.width), 14)
	w.Write(uint64(p.height), 14)
	w.Write(uint64(p.chroma), 2)
	w.Write(uint64((p.outputDepth-6)/2), 3)
	if p.profile == ProfileMain10 {
		w.Write(uint64((p.sampleDepth-6)/2), 3)
	}
	w.Write(uint64(p.aspect), 4)
	w.Write(uint64(p.frameRateCode), 4)
	w.Write(uint64(p.brLower), 18)
	w.WriteBit(1)
	w.Write(uint64(p.brUpper), 12)
	w.WriteBool(p.lowDelay)
	w.WriteBit(1)
	w.WriteBool(false)   // temporal_id_enable_flag
	w.Write(0x2aaaa, 18) // bbv_buffer_size
	w.Write(uint64(p.log2LCU), 3)
	w.WriteBool(p.enableWQ)
	if p.enableWQ {
		w.WriteBool(p.wqm != nil)
		if p.wqm != nil {
			writeWQM(w, p.wqm)
		}
	}
	w.WriteBool(p.disableScenePic)
	w.WriteBool(true)  // multi_hypothesis_skip
	w.WriteBool(false) // dual_hypothesis_prediction
	w.WriteBool(true)  // weighted_skip
	w.WriteBool(true)  // amp
	w.WriteBool(false) // nsqt
	w.WriteBool(false) // nsip
	w.WriteBool(true)  // secondary_transform
	w.WriteBool(p.sao)
	w.WriteBool(p.alf)
	w.WriteBool(true) // pmvr
	w.WriteBit(1)
	w.Write(uint64(len(p.rcs)), 6)
	for i := range p.rcs {
		writeRCS(w, &p.rcs[i])
	}
	if !p.lowDelay {
		w.Write(uint64(p.reorderDelay), 5)
	}
	w.WriteBool(true) // cross_slice_loopfilter
	w.Write(3, 2)
	w.Align()
	return w.Bytes()
}

type picParams struct {
	intra          bool
	codingType     PicCodingType
	scenePic       bool
	scenePicOutput bool
	doi            uint8
	outputDelay    int
	rcsIndex       int // <0 时使用 inlineRCS
	inlineRCS      RefConfigSet
	qp             int
	wqDataIndex    int // >0 时写图像级加权量化
	wqParamIndex   int
	wqModel        int
	wqDeltas       [6]int
	alf            *ALFParam
}

func (p picParams) bytes(seq *seqParams) []byte {
	w := bits.NewWriter(32)
	w.Write(0xffffffff, 32) // bbv_delay
	if p.intra {
		w.WriteBool(false) // time_code_flag
		if !seq.disableScenePic {
			w.WriteBool(p.scenePic)
			if p.scenePic {
				w.WriteBool(p.scenePicOutput)
			}
		}
	} else {
		w.Write(uint64(p.codingType), 2)
		if !seq.disableScenePic {
			if p.codingType == CodingTypeP {
				w.WriteBool(false) // scene_pred
			}
			if p.codingType != CodingTypeB {
				w.WriteBool(true) // scene_ref
			}
		}
	}
	w.Write(uint64(p.doi), 8)
	if !seq.lowDelay && (!p.intra || !p.scenePic || p.scenePicOutput) {
		w.WriteUe(uint32(p.outputDelay))
	}
	if p.rcsIndex >= 0 {
		w.WriteBool(true)
		w.Write(uint64(p.rcsIndex), 5)
	} else {
		w.WriteBool(false)
		writeRCS(w, &p.inlineRCS)
	}
	if seq.lowDelay {
		w.WriteUe(2) // bbv_check_times
	}
	w.WriteBool(true)  // progressive_frame
	w.WriteBool(true)  // top_field_first
	w.WriteBool(false) // repeat_first_field
	w.WriteBool(true)  // fixed_picture_qp
	w.Write(uint64(p.qp), 7)
	if !p.intra {
		if p.codingType != CodingTypeB {
			w.WriteBit(1)
		}
		w.WriteBool(true) // random_access_decodable
	}
	w.WriteBool(false) // loop_filter_disable
	w.WriteBool(true)  // loop_filter_parameter_flag
	w.WriteSe(3)
	w.WriteSe(-2)
	w.WriteBool(false) // chroma_quant_param_disable
	w.WriteSe(1)
	w.WriteSe(-1)
	if seq.enableWQ {
		w.WriteBool(p.wqDataIndex > 0)
		if p.wqDataIndex > 0 {
			w.Write(uint64(p.wqDataIndex), 2)
			if p.wqDataIndex == 1 {
				w.WriteBit(1)
				w.Write(uint64(p.wqParamIndex), 2)
				w.Write(uint64(p.wqModel), 2)
				if p.wqParamIndex == 1 || p.wqParamIndex == 2 {
					for _, d := range p.wqDeltas {
						w.WriteSe(int32(d))
					}
				}
			}
		}
	}
	if seq.alf {
		writeALF(w, p.alf)
	}
	w.Align()
	w.Write(0xff, 8)
	return w.Bytes()
}

func writeALF(w *bits.Writer, alf *ALFParam) {
	if alf == nil {
		alf = &ALFParam{}
	}
	for _, e := range alf.Enable {
		w.WriteBool(e)
	}
	if alf.Enable[0] {
		w.WriteUe(uint32(alf.NumFilter - 1))
		for i := 0; i < alf.NumFilter; i++ {
			if i > 0 && alf.NumFilter != ALFLumaRegions {
				w.WriteUe(uint32(alf.RegionDistance[i]))
			}
			for _, c := range alf.Luma[i] {
				w.WriteSe(int32(c))
			}
		}
	}
	for i := range alf.Chroma {
		if alf.Enable[i+1] {
			for _, c := range alf.Chroma[i] {
				w.WriteSe(int32(c))
			}
		}
	}
}

// unit prefixes payload with 00 00 01 code.
func unit(code byte, payload []byte) []byte {
	return append([]byte{0x00, 0x00, 0x01, code}, payload...)
}

// sliceUnit builds a slice with vertical position y (carried by the start
// code) and horizontal position x, followed by fake entropy coded data.
func sliceUnit(y, x byte) []byte {
	return []byte{0x00, 0x00, 0x01, y, x, 0xaa, 0xbb, 0xcc}
}

func packet(units ...[]byte) []byte {
	var pkt []byte
	for _, u := range units {
		pkt = append(pkt, u...)
	}
	return pkt
}
