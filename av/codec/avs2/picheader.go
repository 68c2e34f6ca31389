// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"github.com/cnotch/avs2probe/utils/bits"
)

// PicData holds the fields that differ between intra and inter picture
// headers. It is either IntraData or InterData.
type PicData interface {
	picData()
}

// TimeCode 时间码
type TimeCode struct {
	Hours   int `json:"hh"`
	Minutes int `json:"mm"`
	Seconds int `json:"ss"`
	Frames  int `json:"ff"`
}

// IntraData 帧内图像头特有字段
type IntraData struct {
	HasTimeCode    bool     `json:"hastimecode"`
	TimeCode       TimeCode `json:"timecode"`
	ScenePic       bool     `json:"scenepic"`
	ScenePicOutput bool     `json:"scenepicoutput"`
}

// InterData 帧间图像头特有字段
type InterData struct {
	CodingType   PicCodingType `json:"codingtype"`
	ScenePred    bool          `json:"scenepred"`
	SceneRef     bool          `json:"sceneref"`
	RandomAccess bool          `json:"randomaccess"` // random access decodable
}

func (IntraData) picData() {}
func (InterData) picData() {}

// PicHeader 图像头
type PicHeader struct {
	BBVDelay uint32  `json:"bbvdelay"`
	Data     PicData `json:"data"`

	DOI           uint8        `json:"doi"` // decode_order_index
	TemporalID    int          `json:"temporalid"`
	OutputDelay   int          `json:"outputdelay"`
	RCSRef        RCSRef       `json:"rcsref"`
	RCS           RefConfigSet `json:"rcs"` // RCSRef 解析后的副本
	BBVCheckTimes int          `json:"bbvchecktimes"`

	ProgressiveFrame bool `json:"progressiveframe"`
	PictureStructure int  `json:"picturestructure"`
	TopFieldFirst    bool `json:"topfieldfirst"`
	RepeatFirstField bool `json:"repeatfirstfield"`
	TopFieldPicture  bool `json:"topfieldpicture"`

	FixedQP bool `json:"fixedqp"`
	QP      int  `json:"qp"`

	// loop filter
	DisableLF     bool `json:"disablelf"`
	LFParam       bool `json:"lfparam"`
	LFAlphaOffset int  `json:"lfalpha"`
	LFBetaOffset  int  `json:"lfbeta"`

	NoChromaQuantParam bool `json:"nochromaquant"`
	CbQuantDelta       int  `json:"cbqdelta"`
	CrQuantDelta       int  `json:"crqdelta"`

	EnablePicWQ  bool      `json:"enablepicwq"`
	WQDataIndex  int       `json:"wqdataindex"`
	WQParamIndex int       `json:"wqparamindex"`
	WQModel      int       `json:"wqmodel"`
	WQParamDelta [2][6]int `json:"-"`
	WQM          WQMatrix  `json:"-"`

	ALFEnable [3]bool                           `json:"alfenable"`
	ALFCoeff  [ALFLumaRegions + 2][ALFTaps]int8 `json:"-"` // 0-15:luma, 16:cb, 17:cr
}

func (pic *PicHeader) reset(intra bool) {
	*pic = PicHeader{}
	if intra {
		pic.Data = IntraData{}
	} else {
		pic.Data = InterData{RandomAccess: true}
	}
	pic.PictureStructure = FieldInterleaved
	pic.WQM = defaultWQM
}

// IsIntra reports whether the header came from an intra picture start code.
func (pic *PicHeader) IsIntra() bool {
	_, ok := pic.Data.(IntraData)
	return ok
}

// Type derives the picture type.
func (pic *PicHeader) Type() PicType {
	switch d := pic.Data.(type) {
	case IntraData:
		if !d.ScenePic {
			return PicI
		}
		if d.ScenePicOutput {
			return PicG
		}
		return PicGB
	case InterData:
		switch d.CodingType {
		case CodingTypeP:
			if d.ScenePred {
				return PicS
			}
			return PicP
		case CodingTypeB:
			return PicB
		case CodingTypeF:
			return PicF
		}
	}
	return PicUnknown
}

// POI returns the picture order index, doi + output_delay - output_reorder_delay
// in 8 bit arithmetic.
func (pic *PicHeader) POI(seq *SeqHeader) uint8 {
	return uint8(int(pic.DOI) + pic.OutputDelay - seq.OutputReorderDelay)
}

// Decode decodes a picture header. data is the raw unit payload after the
// start code; pseudo start codes are removed before parsing.
func (pic *PicHeader) Decode(startCode uint32, data []byte, seq *SeqHeader) (err error) {
	defer recoverInvalid("picture header", &err)

	if !IsPictureStartCode(startCode) {
		return invalidf("start code 0x%08x is not a picture header", startCode)
	}
	intra := startCode == StartCodeIntraPic
	pic.reset(intra)

	r := bits.NewReader(removePseudoCode(data))
	pic.BBVDelay = r.ReadUint32(32)

	if intra {
		var d IntraData
		d.HasTimeCode = r.ReadBool()
		if d.HasTimeCode {
			r.Skip(1)
			d.TimeCode.Hours = r.ReadInt(5)
			d.TimeCode.Minutes = r.ReadInt(6)
			d.TimeCode.Seconds = r.ReadInt(6)
			d.TimeCode.Frames = r.ReadInt(6)
		}
		if !seq.DisableScenePic {
			d.ScenePic = r.ReadBool()
			if d.ScenePic {
				d.ScenePicOutput = r.ReadBool()
			}
		}
		pic.Data = d
	} else {
		d := InterData{RandomAccess: true}
		d.CodingType = PicCodingType(r.ReadUint8(2))
		if !seq.DisableScenePic {
			if d.CodingType == CodingTypeP {
				d.ScenePred = r.ReadBool()
			}
			if d.CodingType != CodingTypeB && !d.ScenePred {
				d.SceneRef = r.ReadBool()
			}
		}
		pic.Data = d
	}

	pic.DOI = r.ReadUint8(8)
	if seq.HasTemporalID {
		pic.TemporalID = r.ReadInt(3)
	}

	if !seq.LowDelay {
		if d, ok := pic.Data.(IntraData); !ok || !d.ScenePic || d.ScenePicOutput {
			pic.OutputDelay = r.ReadUeInt()
		}
	}

	if r.ReadBool() {
		pic.RCSRef = IndexedRCS(r.ReadUint8(5))
	} else {
		var in InlineRCS
		if err = in.decode(r); err != nil {
			return err
		}
		pic.RCSRef = in
	}
	if pic.RCS, err = pic.RCSRef.resolve(seq); err != nil {
		return err
	}

	if seq.LowDelay {
		pic.BBVCheckTimes = r.ReadUeInt()
	}

	pic.ProgressiveFrame = r.ReadBool()
	if !pic.ProgressiveFrame {
		pic.PictureStructure = r.ReadInt(1)
	}
	pic.TopFieldFirst = r.ReadBool()
	pic.RepeatFirstField = r.ReadBool()
	if seq.FieldCoding {
		pic.TopFieldPicture = r.ReadBool()
		r.Skip(1)
	}

	pic.FixedQP = r.ReadBool()
	pic.QP = r.ReadInt(7)

	if d, ok := pic.Data.(InterData); ok {
		if !(d.CodingType == CodingTypeB && pic.PictureStructure == FieldInterleaved) {
			r.Skip(1)
		}
		d.RandomAccess = r.ReadBool()
		pic.Data = d
	}

	pic.DisableLF = r.ReadBool()
	if !pic.DisableLF {
		pic.LFParam = r.ReadBool()
		if pic.LFParam {
			pic.LFAlphaOffset = r.ReadSeInt()
			pic.LFBetaOffset = r.ReadSeInt()
		}
	}

	pic.NoChromaQuantParam = r.ReadBool()
	if !pic.NoChromaQuantParam {
		pic.CbQuantDelta = r.ReadSeInt()
		pic.CrQuantDelta = r.ReadSeInt()
	}

	pic.EnablePicWQ = seq.EnableWQ && r.ReadBool()
	if pic.EnablePicWQ {
		pic.WQDataIndex = r.ReadInt(2)
		switch pic.WQDataIndex {
		case 1:
			r.Skip(1)
			pic.WQParamIndex = r.ReadInt(2)
			pic.WQModel = r.ReadInt(2)
			if pic.WQParamIndex == 1 || pic.WQParamIndex == 2 {
				deltas := &pic.WQParamDelta[pic.WQParamIndex-1]
				for i := range deltas {
					deltas[i] = r.ReadSeInt()
				}
			}
			pic.WQM = ModelWQMatrix(pic.WQModel, WQParams(pic.WQParamIndex, &pic.WQParamDelta))
		case 2:
			pic.WQM.decode(r)
		}
	}

	if seq.ALF {
		var alf ALFParam
		if err = alf.decode(r); err != nil {
			return err
		}
		pic.ALFEnable = alf.Enable
		pic.ALFCoeff = alf.Coefficients()
	}

	r.Align()

	if !seq.IsValidQP(pic.QP) {
		return invalidf("picture qp %d out of range for %d bit samples", pic.QP, seq.SampleBitDepth)
	}
	return nil
}
