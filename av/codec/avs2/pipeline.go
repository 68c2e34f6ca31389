// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"sync"

	"github.com/cnotch/xlog"
)

// PictureContext 当前解码图像的上下文，在 StartPicture 到 EndPicture 之间有效
type PictureContext struct {
	Seq   *SeqHeader
	Frame *Frame
	DPB   *DPB
}

// Params derives the hardware picture parameters.
func (pc *PictureContext) Params() (*PictureParams, error) {
	return NewPictureParams(pc.Seq, pc.Frame, pc.DPB)
}

// PixelPipeline 像素重建管线（通常是硬件加速）。
// 每幅图像调用一次 StartPicture，每片调用一次 SubmitSlice，最后 EndPicture。
type PixelPipeline interface {
	StartPicture(pc *PictureContext) error
	// SubmitSlice receives the parsed header and the undecoded slice unit,
	// starting at the low byte of its start code.
	SubmitSlice(pc *PictureContext, slc *SliceHeader, data []byte) error
	EndPicture(pc *PictureContext) error
}

// FakePipeline 不做重建，只在图像的第一片时绘制调试图案：
// 每 16 行一条亮线，并在 poi 对应的位置画一条 16 行宽的亮带。
type FakePipeline struct {
	Logger *xlog.Logger
}

// StartPicture implements PixelPipeline.
func (fp *FakePipeline) StartPicture(pc *PictureContext) error { return nil }

// SubmitSlice implements PixelPipeline.
func (fp *FakePipeline) SubmitSlice(pc *PictureContext, slc *SliceHeader, data []byte) error {
	if pc.Frame.NumSlice != 1 || pc.Frame.Buffer == nil {
		return nil
	}
	DrawFakePicture(pc.Frame.Buffer, pc.Frame.POI)
	logger := fp.Logger
	if logger == nil {
		logger = xlog.L()
	}
	if logger.LevelEnabled(xlog.DebugLevel) {
		logger.Debugf("fake picture drawn, poi=%d <%s>", pc.Frame.POI, pc.Frame.Type)
	}
	return nil
}

// EndPicture implements PixelPipeline.
func (fp *FakePipeline) EndPicture(pc *PictureContext) error { return nil }

// DrawFakePicture fills b with the debug pattern of poi.
func DrawFakePicture(b *PixelBuffer, poi uint8) {
	f := b.Format()
	bands := f.Height / 16
	l := 0
	if bands > 0 {
		l = int(poi) % bands * 16
	}

	y := b.Plane(0)
	stride := b.Stride(0)
	for row := 0; row < f.Height; row++ {
		v := byte(0x10)
		if row&0xf == 0 || (row >= l && row < l+16) {
			v = 0xe0
		}
		line := y[row*stride : (row+1)*stride]
		for i := range line {
			line[i] = v
		}
	}

	for i := 1; i < 3; i++ {
		plane := b.Plane(i)
		for j := range plane {
			plane[j] = 0x80
		}
	}
}

// ParamsRecorder 记录每幅图像派生出的硬件参数，可用于检查码流或离线比对
type ParamsRecorder struct {
	mu      sync.Mutex
	limit   int
	records []PictureRecord
	current *PictureRecord
}

// PictureRecord 一幅图像的参数
type PictureRecord struct {
	Picture *PictureParams `json:"picture"`
	Slices  []SliceParams  `json:"slices"`
}

// NewParamsRecorder keeps the last limit pictures, all when limit <= 0.
func NewParamsRecorder(limit int) *ParamsRecorder {
	return &ParamsRecorder{limit: limit}
}

// StartPicture implements PixelPipeline.
func (pr *ParamsRecorder) StartPicture(pc *PictureContext) error {
	params, err := pc.Params()
	if err != nil {
		return err
	}
	pr.current = &PictureRecord{Picture: params}
	return nil
}

// SubmitSlice implements PixelPipeline.
func (pr *ParamsRecorder) SubmitSlice(pc *PictureContext, slc *SliceHeader, data []byte) error {
	if pr.current == nil {
		return invalidf("slice submitted before picture start")
	}
	pr.current.Slices = append(pr.current.Slices, NewSliceParams(slc, len(data)))
	return nil
}

// EndPicture implements PixelPipeline.
func (pr *ParamsRecorder) EndPicture(pc *PictureContext) error {
	if pr.current == nil {
		return nil
	}

	pr.mu.Lock()
	pr.records = append(pr.records, *pr.current)
	if pr.limit > 0 && len(pr.records) > pr.limit {
		pr.records = append(pr.records[:0], pr.records[len(pr.records)-pr.limit:]...)
	}
	pr.mu.Unlock()

	pr.current = nil
	return nil
}

// Records returns a copy of the recorded pictures, oldest first.
func (pr *ParamsRecorder) Records() []PictureRecord {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return append([]PictureRecord(nil), pr.records...)
}

// PipelineChain calls each pipeline in turn, stopping at the first error.
type PipelineChain []PixelPipeline

// StartPicture implements PixelPipeline.
func (c PipelineChain) StartPicture(pc *PictureContext) error {
	for _, p := range c {
		if err := p.StartPicture(pc); err != nil {
			return err
		}
	}
	return nil
}

// SubmitSlice implements PixelPipeline.
func (c PipelineChain) SubmitSlice(pc *PictureContext, slc *SliceHeader, data []byte) error {
	for _, p := range c {
		if err := p.SubmitSlice(pc, slc, data); err != nil {
			return err
		}
	}
	return nil
}

// EndPicture implements PixelPipeline.
func (c PipelineChain) EndPicture(pc *PictureContext) error {
	for _, p := range c {
		if err := p.EndPicture(pc); err != nil {
			return err
		}
	}
	return nil
}
