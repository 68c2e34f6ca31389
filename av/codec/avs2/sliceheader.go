// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import "github.com/cnotch/avs2probe/utils/bits"

// 片头最多占用的字节数
const maxSliceHeaderBytes = 5

// SliceHeader 片头
type SliceHeader struct {
	LCUX    int     `json:"lcux"`
	LCUY    int     `json:"lcuy"`
	FixedQP bool    `json:"fixedqp"`
	QP      int     `json:"qp"`
	SAO     [3]bool `json:"sao"`
	// AECByteOffset 熵编码数据在去伪起始码后的片数据中的起始字节
	AECByteOffset int `json:"aecoffset"`
}

// Decode decodes a slice header. data starts at the low byte of the slice
// start code; only the leading bytes go through pseudo start code removal.
func (slc *SliceHeader) Decode(data []byte, seq *SeqHeader, pic *PicHeader) (err error) {
	defer recoverInvalid("slice header", &err)

	var buf [maxSliceHeaderBytes]byte
	src := data
	if len(src) > maxSliceHeaderBytes {
		src = src[:maxSliceHeaderBytes]
	}
	n := RemovePseudoCode(buf[:], src)

	*slc = SliceHeader{}
	r := bits.NewReader(buf[:n])

	slc.LCUY = r.ReadInt(8)
	if seq.Height > (144 << uint(seq.Log2LCUSize)) {
		slc.LCUY += r.ReadInt(3) << 7
	}
	slc.LCUX = r.ReadInt(8)
	if seq.Width > (255 << uint(seq.Log2LCUSize)) {
		slc.LCUX += r.ReadInt(2) << 8
	}

	if !pic.FixedQP {
		slc.FixedQP = r.ReadBool()
		slc.QP = r.ReadInt(7)
	} else {
		slc.FixedQP = true
		slc.QP = pic.QP
	}

	if seq.SAO {
		for i := range slc.SAO {
			slc.SAO[i] = r.ReadBool()
		}
	}

	r.Align() // aec_byte_alignment_bit
	slc.AECByteOffset = r.Offset() >> 3
	return nil
}
