// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import "github.com/cnotch/avs2probe/utils/bits"

// RefConfigSet 参考配置集（RCS）
type RefConfigSet struct {
	RefByOthers bool     `json:"refbyothers"` // 被后续图像参考
	NumRef      int      `json:"nref"`
	RefDelta    [8]uint8 `json:"refdelta"` // 参考图像 doi 差值
	NumRemove   int      `json:"nrm"`
	RemoveDelta [8]uint8 `json:"rmdelta"` // 移除图像 doi 差值
}

func (rcs *RefConfigSet) decode(r *bits.Reader) error {
	rcs.RefByOthers = r.ReadBool()
	rcs.NumRef = r.ReadInt(3)
	for j := 0; j < rcs.NumRef; j++ {
		rcs.RefDelta[j] = r.ReadUint8(6)
	}
	rcs.NumRemove = r.ReadInt(3)
	for j := 0; j < rcs.NumRemove; j++ {
		rcs.RemoveDelta[j] = r.ReadUint8(6)
	}
	if !r.ReadMarker() {
		return invalidf("marker bit at end of rcs")
	}
	return nil
}

// IsSlidingWindow reports whether the set removes exactly the previous
// picture in decode order. Missing pictures are tolerated in that case.
func (rcs *RefConfigSet) IsSlidingWindow() bool {
	return rcs.NumRemove == 1 && rcs.RemoveDelta[0] == 1
}

// RCSRef selects the reference configuration set of a picture: an index into
// the sequence table or a set carried inline in the picture header.
type RCSRef interface {
	resolve(seq *SeqHeader) (RefConfigSet, error)
}

// IndexedRCS refers to an entry of the sequence header RCS table.
type IndexedRCS uint8

func (idx IndexedRCS) resolve(seq *SeqHeader) (RefConfigSet, error) {
	if int(idx) >= seq.NumRCS {
		return RefConfigSet{}, invalidf("rcs index %d out of range [0,%d)", idx, seq.NumRCS)
	}
	return seq.RCS[idx], nil
}

// InlineRCS is a set carried by the picture header itself.
type InlineRCS struct {
	RefConfigSet
}

func (in InlineRCS) resolve(*SeqHeader) (RefConfigSet, error) {
	return in.RefConfigSet, nil
}
