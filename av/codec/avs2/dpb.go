// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"fmt"
	"strings"

	"github.com/cnotch/xlog"
)

// DPB 解码图像缓冲，固定 MaxDPBCount 个槽位，线性查找
type DPB struct {
	frames  [MaxDPBCount]Frame
	current *Frame
	lastDOI uint8 // 最近获取的图像的 doi，作为输出排序的窗口基准
	alloc   BufferAllocator
	logger  *xlog.Logger
}

// NewDPB creates a DPB allocating pixel buffers from alloc.
// nil alloc selects a BufferPool with the default limits.
func NewDPB(alloc BufferAllocator, logger *xlog.Logger) *DPB {
	if alloc == nil {
		alloc = NewBufferPool(0, 0)
	}
	if logger == nil {
		logger = xlog.L()
	}
	d := &DPB{alloc: alloc, logger: logger}
	for i := range d.frames {
		d.frames[i].Index = i
	}
	return d
}

// wrapDiff returns a - b as a signed distance in the 8 bit index window.
func wrapDiff(a, b uint8) int {
	return int(int8(a - b))
}

// Current returns the frame being decoded, nil between pictures.
func (d *DPB) Current() *Frame {
	return d.current
}

// ClearCurrent ends the current picture.
func (d *DPB) ClearCurrent() {
	d.current = nil
}

// Len returns the number of slots in use.
func (d *DPB) Len() int {
	n := 0
	for i := range d.frames {
		if d.frames[i].InUse() {
			n++
		}
	}
	return n
}

// FrameByDOI returns the in use frame with the decode order index doi.
func (d *DPB) FrameByDOI(doi uint8) *Frame {
	for i := range d.frames {
		f := &d.frames[i]
		if f.InUse() && f.Header.DOI == doi {
			return f
		}
	}
	return nil
}

func (d *DPB) unusedFrame() *Frame {
	for i := range d.frames {
		if d.frames[i].Marks.Unused() {
			return &d.frames[i]
		}
	}
	return nil
}

// Acquire takes a free slot for the picture pic and resolves its references.
// On error no slot is left in use.
func (d *DPB) Acquire(seq *SeqHeader, pic *PicHeader) (cur *Frame, err error) {
	f := d.unusedFrame()
	if f == nil {
		d.logger.Errorf("no unused frame buffer for doi=%d", pic.DOI)
		return nil, fmt.Errorf("%w: doi=%d", ErrOutOfBuffers, pic.DOI)
	}

	f.Marks |= MarkUsed
	defer func() {
		if err != nil {
			f.release()
		}
	}()

	f.Header = *pic
	f.Type = pic.Type()
	f.POI = pic.POI(seq)
	f.NumSlice = 0

	rcs := &pic.RCS
	f.Ref = rcs.RefByOthers
	for i := 0; i < rcs.NumRef && i < MaxRefCount; i++ {
		refDOI := pic.DOI - rcs.RefDelta[i]
		ref := d.FrameByDOI(refDOI)
		if ref == nil {
			if rcs.IsSlidingWindow() {
				d.logger.Warnf("ref frame doi=%d missing, curr doi=%d, sliding window", refDOI, pic.DOI)
				continue
			}
			d.logger.Errorf("ref frame doi=%d not in dpb, curr doi=%d", refDOI, pic.DOI)
			return nil, invalidf("reference doi %d of doi %d not in dpb", refDOI, pic.DOI)
		}
		f.RefDOI[f.NumRef] = refDOI
		f.RefPOI[f.NumRef] = ref.POI
		f.NumRef++
	}

	f.Buffer, err = d.alloc.Allocate(BufferFormat{
		Width:    seq.Width,
		Height:   seq.Height,
		BitDepth: seq.OutputBitDepth,
	})
	if err != nil {
		d.logger.Errorf("allocate pixel buffer failed: %v", err)
		return nil, err
	}

	d.current = f
	d.lastDOI = pic.DOI
	return f, nil
}

// UpdateMarks applies the reference configuration set of the current
// picture and marks the pictures that may be output.
func (d *DPB) UpdateMarks() {
	cur := d.current
	if cur == nil {
		return
	}
	pic := &cur.Header
	rcs := &pic.RCS

	// 不再被参考的图像
	for i := 0; i < rcs.NumRemove; i++ {
		rmDOI := pic.DOI - rcs.RemoveDelta[i]
		f := d.FrameByDOI(rmDOI)
		if f == nil {
			if rcs.IsSlidingWindow() {
				d.logger.Debugf("sliding window dpb update, doi=%d", rmDOI)
			} else {
				d.logger.Warnf("removed frame doi=%d not in dpb, curr doi=%d", rmDOI, pic.DOI)
			}
			continue
		}
		f.Marks |= MarkUnref
	}

	// 当前图像
	switch {
	case cur.Type == PicGB:
		cur.Marks |= MarkRef | MarkOutputed
	case rcs.RefByOthers:
		cur.Marks |= MarkRef
	default:
		cur.Marks |= MarkUnref
	}

	// 可输出的图像
	for i := range d.frames {
		f := &d.frames[i]
		if !f.InUse() || f.Type == PicGB {
			continue
		}
		due := f.Header.DOI + uint8(f.Header.OutputDelay)
		if wrapDiff(due, pic.DOI) <= 0 {
			f.Marks |= MarkOutputable
		}
	}
}

// Output marks the outputable frame with the smallest poi as output and
// returns it. nil when nothing can be output.
func (d *DPB) Output() *Picture {
	var out *Frame
	for i := range d.frames {
		f := &d.frames[i]
		if !f.Marks.Outputable() {
			continue
		}
		if out == nil || wrapDiff(f.POI, d.lastDOI) < wrapDiff(out.POI, d.lastDOI) {
			out = f
		}
	}
	if out == nil {
		return nil
	}

	out.Marks |= MarkOutputed
	if d.logger.LevelEnabled(xlog.DebugLevel) {
		d.logger.Debugf("[DPB Trace] output poi=%d <%s>", out.POI, out.Type)
	}

	header := out.Header
	p := &Picture{
		DOI:    out.Header.DOI,
		POI:    out.POI,
		Type:   out.Type,
		Header: &header,
	}
	if out.Buffer != nil {
		p.Buffer = out.Buffer.Ref()
	}
	return p
}

// MarkEOS marks every resident frame unreferenced and outputable.
func (d *DPB) MarkEOS() {
	for i := range d.frames {
		f := &d.frames[i]
		if f.InUse() {
			f.Marks |= MarkUnref | MarkOutputable
		}
	}
}

// RemoveRemovable releases the frames that are output and unreferenced.
func (d *DPB) RemoveRemovable() int {
	n := 0
	for i := range d.frames {
		f := &d.frames[i]
		if f.Marks.Removable() {
			if f == d.current {
				d.current = nil
			}
			f.release()
			n++
		}
	}
	return n
}

// Flush releases every frame.
func (d *DPB) Flush() {
	d.current = nil
	for i := range d.frames {
		if d.frames[i].InUse() {
			d.frames[i].release()
		}
	}
	d.Trace("decode flush")
}

// Snapshot returns the resident frames.
func (d *DPB) Snapshot() []FrameInfo {
	infos := make([]FrameInfo, 0, MaxDPBCount)
	for i := range d.frames {
		if d.frames[i].InUse() {
			infos = append(infos, d.frames[i].Info())
		}
	}
	return infos
}

// Trace logs the resident frames at debug level.
func (d *DPB) Trace(hint string) {
	if !d.logger.LevelEnabled(xlog.DebugLevel) {
		return
	}
	var sb strings.Builder
	for i := range d.frames {
		f := &d.frames[i]
		if f.InUse() {
			fmt.Fprintf(&sb, "\n   #%d: doi=%d, poi=%d, marks=%s", i, f.Header.DOI, f.POI, f.Marks)
		}
	}
	if sb.Len() == 0 {
		sb.WriteString("\n   #-: none")
	}
	d.logger.Debugf("[DPB Trace] %s%s", hint, sb.String())
}
