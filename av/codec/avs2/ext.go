// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/utils/bits"
	"github.com/cnotch/xlog"
)

// SeqDisplayExt 序列显示扩展
type SeqDisplayExt struct {
	VideoFormat    int  `json:"videoformat"`
	FullRange      bool `json:"fullrange"`
	ColorDesc      bool `json:"colordesc"`
	ColorPrimaries int  `json:"colorprimaries"`
	ColorTransfer  int  `json:"colortransfer"`
	ColorMatrix    int  `json:"colormatrix"`
	DisplayWidth   int  `json:"displaywidth"`
	DisplayHeight  int  `json:"displayheight"`
	TDMode         bool `json:"tdmode"`
	TDPackingMode  int  `json:"tdpackingmode"`
	ViewReverse    bool `json:"viewreverse"`
}

func (ext *SeqDisplayExt) decode(r *bits.Reader) error {
	ext.VideoFormat = r.ReadInt(3)
	ext.FullRange = r.ReadBool()
	ext.ColorDesc = r.ReadBool()
	if ext.ColorDesc {
		ext.ColorPrimaries = r.ReadInt(8)
		ext.ColorTransfer = r.ReadInt(8)
		ext.ColorMatrix = r.ReadInt(8)
	}
	ext.DisplayHeight = r.ReadInt(14)
	if !r.ReadMarker() {
		return invalidf("marker bit in sequence display extension")
	}
	ext.DisplayWidth = r.ReadInt(14)

	ext.TDMode = r.ReadBool()
	if ext.TDMode {
		ext.TDPackingMode = r.ReadInt(8)
		ext.ViewReverse = r.ReadBool()
	}
	return nil
}

// TemporalLevel 时域可分级的一层
type TemporalLevel struct {
	FrameRate codec.Rational `json:"framerate"`
	BitRate   int64          `json:"bitrate"`
}

// TemporalScaleExt 时域可分级扩展
type TemporalScaleExt struct {
	Levels []TemporalLevel `json:"levels"`
}

func (ext *TemporalScaleExt) decode(r *bits.Reader) error {
	n := r.ReadInt(3)
	if r.BitsLeft() < 33*n {
		return invalidf("not enough data for %d temporal levels", n)
	}

	ext.Levels = make([]TemporalLevel, n)
	for i := range ext.Levels {
		frCode := r.ReadUint8(4)
		brLower := int64(r.ReadUint32(18))
		if !r.ReadMarker() {
			return invalidf("marker bit in temporal scalability extension")
		}
		brUpper := int64(r.ReadUint32(12))
		ext.Levels[i] = TemporalLevel{
			FrameRate: FrameRateOf(frCode),
			BitRate:   ((brUpper << 18) + brLower) * 400,
		}
	}
	return nil
}

// CopyrightExt 版权扩展
type CopyrightExt struct {
	Flag     bool   `json:"flag"`
	ID       int    `json:"id"`
	Original bool   `json:"original"`
	Number   uint64 `json:"number"`
}

func (ext *CopyrightExt) decode(r *bits.Reader) error {
	if r.BitsLeft() < 1+8+1+7+3+20+22+22 {
		return invalidf("not enough data for copyright extension")
	}

	ext.Flag = r.ReadBool()
	ext.ID = r.ReadInt(8)
	ext.Original = r.ReadBool()
	r.Skip(7)

	if !r.ReadMarker() {
		return invalidf("marker bit before copyright_number_1")
	}
	ext.Number = r.ReadUint64(20) << 44
	if !r.ReadMarker() {
		return invalidf("marker bit before copyright_number_2")
	}
	ext.Number += r.ReadUint64(22) << 22
	if !r.ReadMarker() {
		return invalidf("marker bit before copyright_number_3")
	}
	ext.Number += r.ReadUint64(22)
	return nil
}

// PicDisplayExt 图像显示扩展，Offsets[i] = {水平偏移, 垂直偏移}
type PicDisplayExt struct {
	Offsets [][2]int16 `json:"offsets"`
}

func picDisplayOffsets(seq *SeqHeader, pic *PicHeader) int {
	if seq.Progressive {
		if pic.RepeatFirstField {
			if pic.TopFieldFirst {
				return 3
			}
			return 2
		}
		return 1
	}
	if pic.PictureStructure == FieldSeparated {
		return 1
	}
	if pic.RepeatFirstField {
		return 3
	}
	return 2
}

func (ext *PicDisplayExt) decode(r *bits.Reader, seq *SeqHeader, pic *PicHeader) error {
	n := picDisplayOffsets(seq, pic)
	if r.BitsLeft() < 34*n {
		return invalidf("not enough data for %d picture display offsets", n)
	}

	ext.Offsets = make([][2]int16, n)
	for i := range ext.Offsets {
		ext.Offsets[i][0] = r.ReadInt16(16)
		if !r.ReadMarker() {
			return invalidf("marker bit after picture_centre_horizontal_offset")
		}
		ext.Offsets[i][1] = r.ReadInt16(16)
		if !r.ReadMarker() {
			return invalidf("marker bit after picture_centre_vertical_offset")
		}
	}
	return nil
}

// Extensions 最近一次解析到的各类扩展，未出现的为 nil
type Extensions struct {
	SeqDisplay    *SeqDisplayExt    `json:"seqdisplay,omitempty"`
	TemporalScale *TemporalScaleExt `json:"temporalscale,omitempty"`
	SeqCopyright  *CopyrightExt     `json:"seqcopyright,omitempty"`
	PicCopyright  *CopyrightExt     `json:"piccopyright,omitempty"`
	PicDisplay    *PicDisplayExt    `json:"picdisplay,omitempty"`
}

// Decode decodes one extension unit. Sequence level extensions appear
// before the first picture header of a packet, picture level ones after it.
// pic is only consulted for picture display extensions.
// Extensions that carry no decoding relevant data are logged and skipped.
func (exts *Extensions) Decode(data []byte, seqLevel bool, seq *SeqHeader, pic *PicHeader, logger *xlog.Logger) (typ ExtensionType, err error) {
	defer recoverInvalid("extension", &err)

	if logger == nil {
		logger = xlog.L()
	}
	r := bits.NewReader(data)
	typ = ExtensionType(r.ReadUint8(4))

	if seqLevel {
		switch typ {
		case ExtSeqDisplay:
			ext := new(SeqDisplayExt)
			if err = ext.decode(r); err == nil {
				exts.SeqDisplay = ext
			}
		case ExtTemporalScale:
			ext := new(TemporalScaleExt)
			if err = ext.decode(r); err == nil {
				exts.TemporalScale = ext
			}
		case ExtCopyright:
			ext := new(CopyrightExt)
			if err = ext.decode(r); err == nil {
				exts.SeqCopyright = ext
			}
		default:
			logger.Warnf("skip sequence %s extension (type %d)", typ, typ)
			return
		}
	} else {
		switch typ {
		case ExtCopyright:
			ext := new(CopyrightExt)
			if err = ext.decode(r); err == nil {
				exts.PicCopyright = ext
			}
		case ExtPicDisplay:
			ext := new(PicDisplayExt)
			if err = ext.decode(r, seq, pic); err == nil {
				exts.PicDisplay = ext
			}
		default:
			logger.Warnf("skip picture %s extension (type %d)", typ, typ)
			return
		}
	}

	if err == nil {
		logger.Infof("got %s extension", typ)
	}
	return
}
