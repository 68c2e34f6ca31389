// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

// RefPicture 硬件参数中的参考图像描述
type RefPicture struct {
	Slot   int     `json:"slot"`
	DOI    int     `json:"doi"` // -1 表示无效
	POI    int     `json:"poi"`
	RefDOI []uint8 `json:"refdoi,omitempty"`
	RefPOI []uint8 `json:"refpoi,omitempty"`
}

func newRefPicture(f *Frame) RefPicture {
	return RefPicture{
		Slot:   f.Index,
		DOI:    int(f.Header.DOI),
		POI:    int(f.POI),
		RefDOI: append([]uint8(nil), f.RefDOI[:f.NumRef]...),
		RefPOI: append([]uint8(nil), f.RefPOI[:f.NumRef]...),
	}
}

// PictureParams 提交给硬件解码管线的图像级参数
type PictureParams struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	Log2LCUSizeMinus4    int          `json:"log2lcusizeminus4"`
	ChromaFormat         ChromaFormat `json:"chromaformat"`
	OutputBitDepthMinus8 int          `json:"outputbitdepthminus8"`
	SampleBitDepthMinus8 int          `json:"samplebitdepthminus8"`

	WeightedSkip        bool `json:"weightedskip"`
	MultiHypothesisSkip bool `json:"multihypothesisskip"`
	NSIP                bool `json:"nsip"`
	DualHypothesis      bool `json:"dph"`
	FieldCodedSequence  bool `json:"fieldcoded"`
	PMVR                bool `json:"pmvr"`
	NSQT                bool `json:"nsqt"`
	AMP                 bool `json:"amp"`
	SecondaryTransform  bool `json:"secondarytransform"`

	FixedPicQP          bool    `json:"fixedpicqp"`
	PicQP               int     `json:"picqp"`
	PictureStructure    int     `json:"picturestructure"`
	TopFieldPicture     bool    `json:"topfieldpicture"`
	ScenePictureDisable bool    `json:"scenepicturedisable"`
	SceneReference      bool    `json:"scenereference"`
	PicType             PicType `json:"pictype"`

	CrossSliceLoopFilter bool    `json:"crossslicelf"`
	DeblockDisable       bool    `json:"dbkdisable"`
	SAO                  bool    `json:"sao"`
	ALF                  bool    `json:"alf"`
	AlphaCOffset         int     `json:"alphacoffset"`
	BetaOffset           int     `json:"betaoffset"`
	PicALF               [3]bool `json:"picalf"`

	PicWeightQuant          bool `json:"picwq"`
	PicWeightQuantDataIndex int  `json:"picwqdataindex"`
	ChromaQuantDeltaCb      int  `json:"cbqdelta"`
	ChromaQuantDeltaCr      int  `json:"crqdelta"`

	NonRef   bool                              `json:"nonref"`
	CurrPic  RefPicture                        `json:"currpic"`
	RefList  []RefPicture                      `json:"reflist"`
	WQMatrix [16 + 64]uint8                    `json:"-"`
	ALFCoeff [ALFLumaRegions + 2][ALFTaps]int8 `json:"-"`
}

// NewPictureParams derives the picture parameters of the current frame.
// Every reference of cur must be resident in dpb.
func NewPictureParams(seq *SeqHeader, cur *Frame, dpb *DPB) (*PictureParams, error) {
	pic := &cur.Header
	p := &PictureParams{
		Width:                seq.Width,
		Height:               seq.Height,
		Log2LCUSizeMinus4:    seq.Log2LCUSize - 4,
		ChromaFormat:         seq.ChromaFormat,
		OutputBitDepthMinus8: seq.OutputBitDepth - 8,
		SampleBitDepthMinus8: seq.SampleBitDepth - 8,
		WeightedSkip:         seq.WeightedSkip,
		MultiHypothesisSkip:  seq.MultiHypothesisSkip,
		NSIP:                 seq.NSIP,
		DualHypothesis:       seq.DualHypothesisPrediction,
		FieldCodedSequence:   seq.FieldCoding,
		PMVR:                 seq.PMVR,
		NSQT:                 seq.NSQT,
		AMP:                  seq.AMP,
		SecondaryTransform:   seq.SecondaryTransform,

		FixedPicQP:          pic.FixedQP,
		PicQP:               pic.QP,
		PictureStructure:    pic.PictureStructure,
		TopFieldPicture:     pic.TopFieldPicture,
		ScenePictureDisable: seq.DisableScenePic,
		PicType:             cur.Type,

		CrossSliceLoopFilter: seq.CrossSliceLoopFilter,
		DeblockDisable:       pic.DisableLF,
		SAO:                  seq.SAO,
		ALF:                  seq.ALF,
		AlphaCOffset:         pic.LFAlphaOffset,
		BetaOffset:           pic.LFBetaOffset,
		PicALF:               pic.ALFEnable,

		PicWeightQuant:          pic.EnablePicWQ,
		PicWeightQuantDataIndex: pic.WQDataIndex,
		ChromaQuantDeltaCb:      pic.CbQuantDelta,
		ChromaQuantDeltaCr:      pic.CrQuantDelta,

		NonRef:   !cur.Ref,
		CurrPic:  newRefPicture(cur),
		ALFCoeff: pic.ALFCoeff,
	}
	if d, ok := pic.Data.(InterData); ok {
		p.SceneReference = d.SceneRef
	}

	p.RefList = make([]RefPicture, 0, cur.NumRef)
	for i := 0; i < cur.NumRef; i++ {
		ref := dpb.FrameByDOI(cur.RefDOI[i])
		if ref == nil {
			return nil, invalidf("reference doi %d of doi %d left the dpb", cur.RefDOI[i], pic.DOI)
		}
		p.RefList = append(p.RefList, newRefPicture(ref))
	}

	wqm := &seq.WQM
	if pic.WQDataIndex != 0 {
		wqm = &pic.WQM
	}
	copy(p.WQMatrix[:16], wqm.M44[:])
	copy(p.WQMatrix[16:], wqm.M88[:])
	return p, nil
}

// SliceParams 提交给硬件解码管线的片级参数
type SliceParams struct {
	DataSize      int     `json:"datasize"`
	DataOffset    int     `json:"dataoffset"`
	LCUStartX     int     `json:"lcux"`
	LCUStartY     int     `json:"lcuy"`
	FixedSliceQP  bool    `json:"fixedqp"`
	SliceQP       int     `json:"qp"`
	SAO           [3]bool `json:"sao"`
	VLCByteOffset int     `json:"vlcbyteoffset"`
}

// NewSliceParams derives the slice parameters; size is the slice unit length.
func NewSliceParams(slc *SliceHeader, size int) SliceParams {
	return SliceParams{
		DataSize:      size,
		LCUStartX:     slc.LCUX,
		LCUStartY:     slc.LCUY,
		FixedSliceQP:  slc.FixedQP,
		SliceQP:       slc.QP,
		SAO:           slc.SAO,
		VLCByteOffset: slc.AECByteOffset & 0xf,
	}
}
