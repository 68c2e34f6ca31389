// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import "strings"

// Marks DPB 槽位标记的组合
type Marks uint32

// DPB 标记
const (
	MarkNull       Marks = 0
	MarkUsed       Marks = 1 << 1
	MarkDecoded    Marks = 1 << 2
	MarkRef        Marks = 1 << 3 // 被参考
	MarkUnref      Marks = 1 << 4 // 不再被参考
	MarkOutputable Marks = 1 << 5 // 可输出
	MarkOutputed   Marks = 1 << 6 // 已输出
)

var markNames = []struct {
	m    Marks
	name string
}{
	{MarkUsed, "USED"},
	{MarkDecoded, "DECODED"},
	{MarkRef, "REF"},
	{MarkUnref, "UNREF"},
	{MarkOutputable, "OUTPUTABLE"},
	{MarkOutputed, "OUTPUTED"},
}

// Unused reports whether no mark is set.
func (m Marks) Unused() bool { return m == MarkNull }

// Has reports whether all marks of x are set.
func (m Marks) Has(x Marks) bool { return m&x == x }

// Outputable reports whether the frame waits for output.
func (m Marks) Outputable() bool {
	return m&MarkOutputable != 0 && m&MarkOutputed == 0
}

// Removable reports whether the frame is output and no longer referenced.
func (m Marks) Removable() bool {
	return m&MarkOutputed != 0 && m&MarkUnref != 0
}

func (m Marks) String() string {
	if m == MarkNull {
		return "NULL"
	}
	var sb strings.Builder
	for _, n := range markNames {
		if m&n.m != 0 {
			if sb.Len() > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(n.name)
		}
	}
	return sb.String()
}

// MarshalText marshals the marks to text.
func (m Marks) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Frame DPB 中的一个槽位
type Frame struct {
	Index    int
	Marks    Marks
	Header   PicHeader
	Type     PicType
	POI      uint8
	Ref      bool // 被后续图像参考
	NumRef   int
	RefDOI   [MaxRefCount]uint8
	RefPOI   [MaxRefCount]uint8
	NumSlice int
	Buffer   *PixelBuffer
}

// InUse reports whether the slot holds a picture.
func (f *Frame) InUse() bool {
	return !f.Marks.Unused()
}

func (f *Frame) release() {
	if f.Buffer != nil {
		f.Buffer.Unref()
	}
	*f = Frame{Index: f.Index}
}

// FrameInfo is a printable view of a DPB slot.
type FrameInfo struct {
	Slot   int     `json:"slot"`
	DOI    uint8   `json:"doi"`
	POI    uint8   `json:"poi"`
	Type   PicType `json:"type"`
	Marks  Marks   `json:"marks"`
	RefDOI []uint8 `json:"refdoi,omitempty"`
}

// Info returns a snapshot of the slot.
func (f *Frame) Info() FrameInfo {
	info := FrameInfo{
		Slot:  f.Index,
		DOI:   f.Header.DOI,
		POI:   f.POI,
		Type:  f.Type,
		Marks: f.Marks,
	}
	if f.NumRef > 0 {
		info.RefDOI = append([]uint8(nil), f.RefDOI[:f.NumRef]...)
	}
	return info
}

// Picture 按输出顺序输出的图像，持有自己的像素缓冲引用
type Picture struct {
	DOI    uint8        `json:"doi"`
	POI    uint8        `json:"poi"`
	Type   PicType      `json:"type"`
	Header *PicHeader   `json:"-"`
	Buffer *PixelBuffer `json:"-"`
}

// Release drops the picture's reference to its pixel buffer.
func (p *Picture) Release() {
	if p.Buffer != nil {
		p.Buffer.Unref()
		p.Buffer = nil
	}
}
