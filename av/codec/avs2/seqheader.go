// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/utils/bits"
)

// SeqHeader 序列头
type SeqHeader struct {
	Profile        Profile      `json:"profile"`
	Level          Level        `json:"level"`
	Progressive    bool         `json:"progressive"`
	FieldCoding    bool         `json:"fieldcoding"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	ChromaFormat   ChromaFormat `json:"chroma"`
	SampleBitDepth int          `json:"samplebitdepth"` // 8 / 10
	OutputBitDepth int          `json:"outputbitdepth"` // 8 / 10
	AspectRatio    AspectRatio  `json:"aspectratio"`
	FrameRateCode  uint8        `json:"frameratecode"`
	BitRate        int64        `json:"bitrate"` // bps
	LowDelay       bool         `json:"lowdelay"`
	HasTemporalID  bool         `json:"temporalid"`
	BBVBufferSize  int          `json:"bbvbuffersize"`
	Log2LCUSize    int          `json:"log2lcusize"`
	EnableWQ       bool         `json:"enablewq"`
	WQM            WQMatrix     `json:"-"`

	DisableScenePic          bool `json:"disablescenepic"`
	MultiHypothesisSkip      bool `json:"multihypothesisskip"`
	DualHypothesisPrediction bool `json:"dualhypothesisprediction"`
	WeightedSkip             bool `json:"weightedskip"`
	AMP                      bool `json:"amp"`  // asymmetric motion partitions
	NSQT                     bool `json:"nsqt"` // nonsquare quadtree transform
	NSIP                     bool `json:"nsip"` // nonsquare intra prediction
	SecondaryTransform       bool `json:"secondarytransform"`
	SAO                      bool `json:"sao"`
	ALF                      bool `json:"alf"`
	PMVR                     bool `json:"pmvr"`

	NumRCS               int                       `json:"nrcs"`
	RCS                  [MaxRCSCount]RefConfigSet `json:"-"`
	OutputReorderDelay   int                       `json:"outputreorderdelay"`
	CrossSliceLoopFilter bool                      `json:"crossslicelf"`
}

// Reset restores the defaults applied before every sequence header.
func (seq *SeqHeader) Reset() {
	*seq = SeqHeader{}
	seq.WQM = defaultWQM
}

// Decode decodes a sequence header payload (the bytes after 00 00 01 B0).
// On error seq holds a partially decoded header and must be discarded.
func (seq *SeqHeader) Decode(data []byte) (err error) {
	defer recoverInvalid("sequence header", &err)

	seq.Reset()
	r := bits.NewReader(data)

	seq.Profile = Profile(r.ReadUint8(8))
	seq.Level = Level(r.ReadUint8(8))
	seq.Progressive = r.ReadBool()
	seq.FieldCoding = r.ReadBool()

	seq.Width = r.ReadInt(14)
	seq.Height = r.ReadInt(14)
	if seq.Width < 16 || seq.Height < 16 {
		return invalidf("picture size %dx%d", seq.Width, seq.Height)
	}

	seq.ChromaFormat = ChromaFormat(r.ReadUint8(2))
	if seq.ChromaFormat != Chroma420 {
		return invalidf("chroma format %d, only 4:2:0 is supported", seq.ChromaFormat)
	}

	seq.OutputBitDepth = 6 + r.ReadInt(3)<<1
	if seq.Profile == ProfileMain10 {
		seq.SampleBitDepth = 6 + r.ReadInt(3)<<1
	} else {
		seq.SampleBitDepth = 8
	}
	if seq.SampleBitDepth != 8 && seq.SampleBitDepth != 10 {
		return invalidf("sample precision %d", seq.SampleBitDepth)
	}
	if seq.OutputBitDepth != 8 && seq.OutputBitDepth != 10 {
		return invalidf("encoding precision %d", seq.OutputBitDepth)
	}
	if seq.SampleBitDepth < seq.OutputBitDepth {
		return invalidf("sample precision %d smaller than encoding precision %d",
			seq.SampleBitDepth, seq.OutputBitDepth)
	}

	seq.AspectRatio = AspectRatio(r.ReadUint8(4))
	seq.FrameRateCode = r.ReadUint8(4)

	brLower := int64(r.ReadUint32(18))
	if !r.ReadMarker() {
		return invalidf("marker bit before bit_rate_upper")
	}
	brUpper := int64(r.ReadUint32(12))
	seq.BitRate = ((brUpper << 18) + brLower) * 400

	seq.LowDelay = r.ReadBool()
	if !r.ReadMarker() {
		return invalidf("marker bit before temporal_id_enable_flag")
	}
	seq.HasTemporalID = r.ReadBool()
	seq.BBVBufferSize = r.ReadInt(18)
	seq.Log2LCUSize = r.ReadInt(3)
	if seq.Log2LCUSize < 4 || seq.Log2LCUSize > 6 {
		return invalidf("lcu size log2 %d", seq.Log2LCUSize)
	}

	seq.EnableWQ = r.ReadBool()
	if seq.EnableWQ && r.ReadBool() {
		seq.WQM.decode(r)
	}

	seq.DisableScenePic = r.ReadBool()
	seq.MultiHypothesisSkip = r.ReadBool()
	seq.DualHypothesisPrediction = r.ReadBool()
	seq.WeightedSkip = r.ReadBool()

	seq.AMP = r.ReadBool()
	seq.NSQT = r.ReadBool()
	seq.NSIP = r.ReadBool()
	seq.SecondaryTransform = r.ReadBool()
	seq.SAO = r.ReadBool()
	seq.ALF = r.ReadBool()
	seq.PMVR = r.ReadBool()

	if !r.ReadMarker() {
		return invalidf("marker bit before num_of_rcs")
	}
	seq.NumRCS = r.ReadInt(6)
	if seq.NumRCS > MaxRCSCount {
		return invalidf("num_of_rcs %d should not exceed %d", seq.NumRCS, MaxRCSCount)
	}
	for i := 0; i < seq.NumRCS; i++ {
		if err = seq.RCS[i].decode(r); err != nil {
			return err
		}
	}

	if !seq.LowDelay {
		seq.OutputReorderDelay = r.ReadInt(5)
	}
	seq.CrossSliceLoopFilter = r.ReadBool()

	r.Skip(2)
	r.Align()
	return nil
}

// FrameRate returns the frame rate as a rational.
func (seq *SeqHeader) FrameRate() codec.Rational {
	return FrameRateOf(seq.FrameRateCode)
}

// SAR returns the sample aspect ratio derived from the display aspect code.
func (seq *SeqHeader) SAR() codec.Rational {
	sar := codec.Rational{Num: 1, Den: 1}
	switch seq.AspectRatio {
	case DAR4x3:
		sar = codec.Rational{Num: 4 * seq.Height, Den: 3 * seq.Width}
	case DAR16x9:
		sar = codec.Rational{Num: 16 * seq.Height, Den: 9 * seq.Width}
	case DAR221x100:
		sar = codec.Rational{Num: 221 * seq.Height, Den: 100 * seq.Width}
	}
	return sar.Reduce()
}

// IsValidQP reports whether qp is in range for the sample bit depth.
func (seq *SeqHeader) IsValidQP(qp int) bool {
	return qp >= 0 && qp <= 63+8*(seq.SampleBitDepth-8)
}

// PixelFormat returns the output pixel format name.
func (seq *SeqHeader) PixelFormat() string {
	if seq.OutputBitDepth == 10 {
		return "yuv420p10"
	}
	return "yuv420p"
}

// MinCUWidth returns the width in minimum coding units.
func (seq *SeqHeader) MinCUWidth() int {
	return (seq.Width + MiniSize - 1) / MiniSize
}

// MinCUHeight returns the height in minimum coding units.
func (seq *SeqHeader) MinCUHeight() int {
	return (seq.Height + MiniSize - 1) / MiniSize
}
