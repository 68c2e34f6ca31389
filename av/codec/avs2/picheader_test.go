// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSeq(t *testing.T, p seqParams) *SeqHeader {
	t.Helper()
	seq := new(SeqHeader)
	require.NoError(t, seq.Decode(p.bytes()))
	return seq
}

func TestPicHeader_DecodeIntra(t *testing.T) {
	sp := defaultSeqParams()
	seq := decodeSeq(t, sp)

	pp := picParams{intra: true, doi: 0x21, qp: 32}
	var pic PicHeader
	require.NoError(t, pic.Decode(StartCodeIntraPic, pp.bytes(&sp), seq))

	assert.True(t, pic.IsIntra())
	assert.Equal(t, PicI, pic.Type())
	assert.Equal(t, uint32(0xffffffff), pic.BBVDelay)
	assert.Equal(t, uint8(0x21), pic.DOI)
	assert.Equal(t, IndexedRCS(0), pic.RCSRef)
	assert.Equal(t, seq.RCS[0], pic.RCS)
	assert.Equal(t, 2, pic.BBVCheckTimes)
	assert.True(t, pic.ProgressiveFrame)
	assert.Equal(t, FieldInterleaved, pic.PictureStructure)
	assert.True(t, pic.TopFieldFirst)
	assert.True(t, pic.FixedQP)
	assert.Equal(t, 32, pic.QP)
	assert.False(t, pic.DisableLF)
	assert.True(t, pic.LFParam)
	assert.Equal(t, 3, pic.LFAlphaOffset)
	assert.Equal(t, -2, pic.LFBetaOffset)
	assert.Equal(t, 1, pic.CbQuantDelta)
	assert.Equal(t, -1, pic.CrQuantDelta)
	assert.False(t, pic.EnablePicWQ)
	assert.Equal(t, DefaultWQMatrix(), pic.WQM)
	// low delay 序列 poi == doi
	assert.Equal(t, uint8(0x21), pic.POI(seq))
}

func TestPicHeader_DecodeInter(t *testing.T) {
	sp := defaultSeqParams()
	seq := decodeSeq(t, sp)

	tests := []struct {
		codingType PicCodingType
		want       PicType
	}{
		{CodingTypeP, PicP},
		{CodingTypeB, PicB},
		{CodingTypeF, PicF},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			pp := picParams{codingType: tt.codingType, doi: 7, rcsIndex: 1, qp: 40}
			var pic PicHeader
			require.NoError(t, pic.Decode(StartCodeInterPic, pp.bytes(&sp), seq))
			assert.False(t, pic.IsIntra())
			assert.Equal(t, tt.want, pic.Type())
			assert.Equal(t, IndexedRCS(1), pic.RCSRef)
			assert.Equal(t, 1, pic.RCS.NumRef)
			d, ok := pic.Data.(InterData)
			require.True(t, ok)
			assert.True(t, d.RandomAccess)
			assert.Equal(t, 40, pic.QP)
		})
	}
}

func TestPicHeader_POI(t *testing.T) {
	sp := defaultSeqParams()
	sp.lowDelay = false
	sp.reorderDelay = 1
	seq := decodeSeq(t, sp)

	pp := picParams{codingType: CodingTypeB, doi: 5, outputDelay: 2, qp: 30}
	var pic PicHeader
	require.NoError(t, pic.Decode(StartCodeInterPic, pp.bytes(&sp), seq))
	assert.Equal(t, 2, pic.OutputDelay)
	assert.Equal(t, 0, pic.BBVCheckTimes)
	assert.Equal(t, uint8(6), pic.POI(seq))

	// 8 位回绕
	pic.DOI = 255
	assert.Equal(t, uint8(0), pic.POI(seq))
	pic.DOI = 0
	pic.OutputDelay = 0
	assert.Equal(t, uint8(255), pic.POI(seq))
}

func TestPicHeader_ScenePictures(t *testing.T) {
	sp := defaultSeqParams()
	sp.disableScenePic = false
	sp.lowDelay = false
	seq := decodeSeq(t, sp)

	tests := []struct {
		name  string
		pp    picParams
		code  uint32
		want  PicType
		delay int
	}{
		{"G", picParams{intra: true, scenePic: true, scenePicOutput: true, outputDelay: 4, qp: 20}, StartCodeIntraPic, PicG, 4},
		// 不输出的场景图像不携带 output_delay
		{"GB", picParams{intra: true, scenePic: true, outputDelay: 4, qp: 20}, StartCodeIntraPic, PicGB, 0},
		{"I", picParams{intra: true, outputDelay: 1, qp: 20}, StartCodeIntraPic, PicI, 1},
		{"P", picParams{codingType: CodingTypeP, outputDelay: 1, qp: 20}, StartCodeInterPic, PicP, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.pp.doi = 9
			var pic PicHeader
			require.NoError(t, pic.Decode(tt.code, tt.pp.bytes(&sp), seq))
			assert.Equal(t, tt.want, pic.Type())
			assert.Equal(t, tt.delay, pic.OutputDelay)
			assert.Equal(t, uint8(9), pic.DOI)
		})
	}
}

func TestPicHeader_InlineRCS(t *testing.T) {
	sp := defaultSeqParams()
	seq := decodeSeq(t, sp)

	in := RefConfigSet{RefByOthers: true, NumRef: 2, RefDelta: [8]uint8{1, 3}, NumRemove: 1, RemoveDelta: [8]uint8{4}}
	pp := picParams{codingType: CodingTypeP, doi: 11, rcsIndex: -1, inlineRCS: in, qp: 33}
	var pic PicHeader
	require.NoError(t, pic.Decode(StartCodeInterPic, pp.bytes(&sp), seq))
	assert.Equal(t, InlineRCS{in}, pic.RCSRef)
	assert.Equal(t, in, pic.RCS)
	assert.False(t, pic.RCS.IsSlidingWindow())
}

func TestPicHeader_DecodeInvalid(t *testing.T) {
	sp := defaultSeqParams()
	seq := decodeSeq(t, sp)

	tests := []struct {
		name string
		code uint32
		data []byte
	}{
		{"rcs index", StartCodeInterPic, picParams{codingType: CodingTypeP, doi: 1, rcsIndex: 5, qp: 30}.bytes(&sp)},
		{"qp", StartCodeIntraPic, picParams{intra: true, doi: 1, qp: 64}.bytes(&sp)},
		{"start code", StartCodeSeqHeader, picParams{intra: true, doi: 1, qp: 30}.bytes(&sp)},
		{"truncated", StartCodeIntraPic, picParams{intra: true, doi: 1, qp: 30}.bytes(&sp)[:5]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pic PicHeader
			err := pic.Decode(tt.code, tt.data, seq)
			assert.True(t, errors.Is(err, ErrInvalidData), "err = %v", err)
		})
	}
}

func TestPicHeader_WeightedQuant(t *testing.T) {
	sp := defaultSeqParams()
	sp.enableWQ = true
	seq := decodeSeq(t, sp)

	t.Run("model", func(t *testing.T) {
		pp := picParams{intra: true, doi: 3, qp: 30, wqDataIndex: 1, wqParamIndex: 1,
			wqDeltas: [6]int{1, 0, 0, 0, 0, -6}}
		var pic PicHeader
		require.NoError(t, pic.Decode(StartCodeIntraPic, pp.bytes(&sp), seq))
		assert.True(t, pic.EnablePicWQ)
		assert.Equal(t, 1, pic.WQDataIndex)
		assert.Equal(t, [6]int{1, 0, 0, 0, 0, -6}, pic.WQParamDelta[0])
		assert.Equal(t, uint8(68), pic.WQM.M44[0])
		assert.Equal(t, uint8(100), pic.WQM.M88[63])
	})

	t.Run("default params", func(t *testing.T) {
		pp := picParams{intra: true, doi: 3, qp: 30, wqDataIndex: 1, wqParamIndex: 0, wqModel: 3}
		var pic PicHeader
		require.NoError(t, pic.Decode(StartCodeIntraPic, pp.bytes(&sp), seq))
		assert.Equal(t, uint8(64), pic.WQM.M44[0])
		// model 3 的 M44[1] 取参数 d
		assert.Equal(t, uint8(58), pic.WQM.M44[1])
	})
}

func TestPicHeader_ALF(t *testing.T) {
	sp := defaultSeqParams()
	sp.alf = true
	seq := decodeSeq(t, sp)

	alf := &ALFParam{Enable: [3]bool{true, false, true}, NumFilter: 2}
	alf.RegionDistance[1] = 8
	alf.Luma[0] = [9]int{1, 1, 1, 1, 1, 1, 1, 1, 2}
	alf.Luma[1] = [9]int{-1, 0, 0, 0, 0, 0, 0, 0, 1}
	alf.Chroma[1] = [9]int{0, 0, 0, 0, 0, 0, 0, 2, 5}

	pp := picParams{intra: true, doi: 3, qp: 30, alf: alf}
	var pic PicHeader
	require.NoError(t, pic.Decode(StartCodeIntraPic, pp.bytes(&sp), seq))
	assert.Equal(t, [3]bool{true, false, true}, pic.ALFEnable)
	assert.Equal(t, [9]int8{1, 1, 1, 1, 1, 1, 1, 1, 50}, pic.ALFCoeff[0])
	assert.Equal(t, [9]int8{1, 1, 1, 1, 1, 1, 1, 1, 50}, pic.ALFCoeff[7])
	assert.Equal(t, [9]int8{-1, 0, 0, 0, 0, 0, 0, 0, 67}, pic.ALFCoeff[8])
	assert.Equal(t, [9]int8{-1, 0, 0, 0, 0, 0, 0, 0, 67}, pic.ALFCoeff[15])
	assert.Equal(t, [9]int8{}, pic.ALFCoeff[ALFCbIndex])
	assert.Equal(t, [9]int8{0, 0, 0, 0, 0, 0, 0, 2, 65}, pic.ALFCoeff[ALFCrIndex])
}
