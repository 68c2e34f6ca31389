// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"time"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/codec/avs2"
	"github.com/cnotch/avs2probe/stats"
)

// Info 会话概要
type Info struct {
	Token       string             `json:"token"`
	ID          string             `json:"id"`
	Source      string             `json:"source"`
	Status      string             `json:"status"`
	StartOn     string             `json:"start_on"`
	Duration    string             `json:"duration"`
	Video       codec.VideoMeta    `json:"video"`
	Decode      stats.DecodeSample `json:"decode"`
	Lost        int64              `json:"lost,omitempty"`      // 丢失的 rtp 包
	Discarded   int64              `json:"discarded,omitempty"` // 因丢包丢弃的访问单元
	Subscribers int                `json:"subscribers,omitempty"`
	LastError   string             `json:"last_error,omitempty"`
}

// Report 会话的完整报告
type Report struct {
	Info
	SeqHeader  *avs2.SeqHeader      `json:"seqheader,omitempty"`
	Extensions avs2.Extensions      `json:"extensions"`
	DPB        []avs2.FrameInfo     `json:"dpb,omitempty"`
	Pictures   []PictureInfo        `json:"pictures,omitempty"`
	Params     []avs2.PictureRecord `json:"params,omitempty"`
}

// Info 获取会话概要
func (p *Probe) Info() *Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.info()
}

func (p *Probe) info() *Info {
	end := p.endOn
	if end.IsZero() {
		end = time.Now()
	}

	info := &Info{
		Token:       p.token,
		ID:          p.id.String(),
		Source:      p.source,
		Status:      statusNames[p.Status()],
		StartOn:     p.startOn.Format(time.RFC3339Nano),
		Duration:    end.Sub(p.startOn).String(),
		Video:       p.video,
		Decode:      p.counter.GetSample(),
		Subscribers: p.subs.count(),
		LastError:   p.lastErr,
	}
	if p.loss != nil {
		info.Lost, info.Discarded = p.loss()
	}
	return info
}

// Report 获取会话报告，includeParams 时附带记录的图像参数
func (p *Probe) Report(includeParams bool) *Report {
	p.mu.RLock()
	r := &Report{
		Info:       *p.info(),
		Extensions: p.exts,
		DPB:        append([]avs2.FrameInfo(nil), p.dpb...),
		Pictures:   append([]PictureInfo(nil), p.pictures...),
	}
	if p.seq != nil {
		seq := *p.seq
		r.SeqHeader = &seq
	}
	p.mu.RUnlock()

	if includeParams {
		r.Params = p.Params()
	}
	return r
}
