// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"testing"

	"github.com/cnotch/avs2probe/utils/bits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceHeader_Decode(t *testing.T) {
	seq := &SeqHeader{Width: 1920, Height: 1080, Log2LCUSize: 6, SampleBitDepth: 8}

	tests := []struct {
		name string
		sao  bool
		pic  PicHeader
		data func(w *bits.Writer)
		want SliceHeader
	}{
		{
			"fixed qp",
			false,
			PicHeader{FixedQP: true, QP: 36},
			func(w *bits.Writer) { w.Write(0x0305, 16) },
			SliceHeader{LCUY: 3, LCUX: 5, FixedQP: true, QP: 36, AECByteOffset: 2},
		},
		{
			"slice qp",
			false,
			PicHeader{QP: 36},
			func(w *bits.Writer) {
				w.Write(0x0102, 16)
				w.WriteBool(false)
				w.Write(40, 7)
			},
			SliceHeader{LCUY: 1, LCUX: 2, QP: 40, AECByteOffset: 3},
		},
		{
			"sao",
			true,
			PicHeader{FixedQP: true, QP: 20},
			func(w *bits.Writer) {
				w.Write(0x1011, 16)
				w.Write(5, 3) // 101
			},
			SliceHeader{LCUY: 16, LCUX: 17, FixedQP: true, QP: 20, SAO: [3]bool{true, false, true}, AECByteOffset: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *seq
			s.SAO = tt.sao
			w := bits.NewWriter(8)
			tt.data(w)
			w.Align()
			w.Write(0xabcdef, 24)

			var slc SliceHeader
			require.NoError(t, slc.Decode(w.Bytes(), &s, &tt.pic))
			assert.Equal(t, tt.want, slc)

			params := NewSliceParams(&slc, len(w.Bytes()))
			assert.Equal(t, tt.want.AECByteOffset, params.VLCByteOffset)
		})
	}
}

func TestSliceHeader_DecodeLargePicture(t *testing.T) {
	seq := &SeqHeader{Width: 16400, Height: 9300, Log2LCUSize: 6}
	pic := &PicHeader{FixedQP: true, QP: 10}

	w := bits.NewWriter(8)
	w.Write(5, 8)
	w.Write(1, 3)
	w.Write(7, 8)
	w.Write(2, 2)
	w.Align()
	w.Write(0xff, 8)

	var slc SliceHeader
	require.NoError(t, slc.Decode(w.Bytes(), seq, pic))
	assert.Equal(t, 133, slc.LCUY)
	assert.Equal(t, 519, slc.LCUX)
	assert.Equal(t, 3, slc.AECByteOffset)
}

func TestSliceHeader_DecodeTruncated(t *testing.T) {
	seq := &SeqHeader{Width: 1920, Height: 1080, Log2LCUSize: 6}
	pic := &PicHeader{}
	var slc SliceHeader
	assert.Error(t, slc.Decode([]byte{0x01, 0x02}, seq, pic))
}
