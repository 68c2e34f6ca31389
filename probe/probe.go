// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package probe runs AVS2 decode sessions fed by files, rtp dumps or
// network ingest, and keeps what they reveal for reports and the api.
package probe

import (
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/codec/avs2"
	"github.com/cnotch/avs2probe/provider/security"
	"github.com/cnotch/avs2probe/stats"
	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
	"github.com/kelindar/rate"
)

// 会话状态
const (
	StatusRunning int32 = iota
	StatusFinished
)

var statusNames = []string{"running", "finished"}

// ErrProbeClosed 会话已结束
var ErrProbeClosed = errors.New("probe is closed")

// 关闭标记，排在它之前的帧都会被解码
type closeMark struct{}

// PictureInfo 一幅输出图像的信息
type PictureInfo struct {
	Seq  int64        `json:"seq"` // 输出序号
	DOI  uint8        `json:"doi"`
	POI  uint8        `json:"poi"`
	Type avs2.PicType `json:"type"`
	QP   int          `json:"qp"`
}

// Probe 一路 AVS2 码流的解码会话
type Probe struct {
	startOn time.Time
	id      security.ID
	token   string
	source  string
	status  int32
	salt    string

	recvQueue *queue.SyncQueue
	closeOnce sync.Once
	done      chan struct{}
	limiter   *rate.Limiter
	counter   stats.Decode
	pool      *avs2.BufferPool
	recorder  *avs2.ParamsRecorder
	fake      bool
	history   int
	session   *avs2.Session // 只在解码 goroutine 中使用
	loss      func() (lost, discarded int64)
	subs      subscriptions
	logger    *xlog.Logger

	mu       sync.RWMutex
	endOn    time.Time
	video    codec.VideoMeta
	seq      *avs2.SeqHeader
	exts     avs2.Extensions
	dpb      []avs2.FrameInfo
	pictures []PictureInfo
	outputs  int64
	lastErr  string
}

// NewProbe 创建解码会话并启动解码 goroutine，source 描述码流来源
func NewProbe(source string, options ...Option) *Probe {
	p := &Probe{
		startOn:   time.Now(),
		id:        security.NewID(),
		source:    source,
		status:    StatusRunning,
		recvQueue: queue.NewSyncQueue(),
		done:      make(chan struct{}),
		counter:   stats.NewChildDecode(stats.Total),
		history:   32,
		logger:    xlog.L(),
	}

	for _, option := range options {
		option.apply(p)
	}

	p.token = p.id.Token(source, p.salt)
	p.logger = p.logger.With(xlog.Fields(xlog.F("probe", p.token)))
	if p.pool == nil {
		p.pool = avs2.NewBufferPool(0, 0)
	}

	pipeline := avs2.PipelineChain{&countingPipeline{counter: p.counter}}
	if p.fake {
		pipeline = append(pipeline, &avs2.FakePipeline{Logger: p.logger})
	}
	if p.recorder != nil {
		pipeline = append(pipeline, p.recorder)
	}
	p.session = avs2.NewSession(avs2.Logger(p.logger),
		avs2.Allocator(p.pool),
		avs2.Pipeline(pipeline))

	go p.process()
	return p
}

// ID 会话 ID
func (p *Probe) ID() security.ID {
	return p.id
}

// Token 会话令牌，API 用它访问会话
func (p *Probe) Token() string {
	return p.token
}

// Source 码流来源
func (p *Probe) Source() string {
	return p.source
}

// Status 会话状态
func (p *Probe) Status() int32 {
	return atomic.LoadInt32(&p.status)
}

// SetLossCounter 设置传输层丢包统计的来源
func (p *Probe) SetLossCounter(loss func() (lost, discarded int64)) {
	p.mu.Lock()
	p.loss = loss
	p.mu.Unlock()
}

// SetVideoMeta 设置带外的视频元数据，例如来自 sdp
func (p *Probe) SetVideoMeta(video codec.VideoMeta) {
	p.mu.Lock()
	p.video = video
	p.mu.Unlock()
}

// WriteFrame 投递一个访问单元，解码是异步的
func (p *Probe) WriteFrame(frame *codec.Frame) error {
	if atomic.LoadInt32(&p.status) != StatusRunning {
		return ErrProbeClosed
	}
	if p.limiter != nil && p.limiter.Limit() {
		p.counter.AddDropped()
		return nil
	}

	p.counter.AddFrame(int64(frame.Size()))
	p.recvQueue.Push(frame)
	return nil
}

// Close 解码完已投递的帧、输出全部剩余图像后关闭会话
func (p *Probe) Close() error {
	p.closeOnce.Do(func() {
		atomic.StoreInt32(&p.status, StatusFinished)
		p.recvQueue.Push(closeMark{})
	})
	<-p.done
	return nil
}

// Done 会话结束时关闭
func (p *Probe) Done() <-chan struct{} {
	return p.done
}

func (p *Probe) process() {
	defer func() {
		defer func() { // 避免 handler 再 panic
			recover()
		}()

		if r := recover(); r != nil {
			p.logger.Errorf("probe routine panic；r = %v \n %s", r, debug.Stack())
			atomic.StoreInt32(&p.status, StatusFinished)
		}

		p.session.Close()
		p.mu.Lock()
		p.endOn = time.Now()
		p.dpb = nil
		// 订阅者收到结束事件后自行退出
		p.subs.publish(&Event{Type: EventEnd, Token: p.token})
		p.mu.Unlock()

		// 尽早通知GC，回收内存
		p.recvQueue.Reset()
		close(p.done)
	}()

	for {
		v := p.recvQueue.Pop()
		if v == nil {
			continue
		}

		frame, ok := v.(*codec.Frame)
		if !ok { // closeMark
			break
		}
		p.decode(frame)
	}

	// 码流结束，按输出顺序输出剩余图像
	for out := p.session.Drain(); out != nil; out = p.session.Drain() {
		p.output(out)
	}
	p.logger.Infof("probe finished; %+v", p.counter.GetSample())
}

func (p *Probe) decode(frame *codec.Frame) {
	out, err := p.session.Decode(frame)
	if err != nil {
		p.counter.AddError()
		p.logger.Warnf("decode access unit failed: %v", err)
		p.subs.publish(&Event{Type: EventError, Token: p.token, Error: err.Error()})
	}

	seq, gotSeq := p.session.SeqHeader()
	exts := p.session.Extensions()
	dpb := p.session.DPB().Snapshot()

	p.mu.Lock()
	if err != nil {
		p.lastErr = err.Error()
	}
	if gotSeq && (p.seq == nil || *p.seq != seq) {
		p.seq = &seq
		meta := p.session.Metadata()
		if p.video.ClockRate > 0 {
			meta.ClockRate = p.video.ClockRate
		}
		p.video = meta
	}
	p.exts = exts
	p.dpb = dpb
	p.mu.Unlock()

	if out != nil {
		p.output(out)
	}
}

func (p *Probe) output(out *avs2.Picture) {
	defer out.Release()
	p.counter.AddOutput()

	info := PictureInfo{DOI: out.DOI, POI: out.POI, Type: out.Type}
	if out.Header != nil {
		info.QP = out.Header.QP
	}

	p.mu.Lock()
	info.Seq = p.outputs
	p.outputs++
	if p.history > 0 {
		p.pictures = append(p.pictures, info)
		if len(p.pictures) > p.history {
			p.pictures = append(p.pictures[:0], p.pictures[len(p.pictures)-p.history:]...)
		}
	}
	p.mu.Unlock()

	p.subs.publish(&Event{Type: EventPicture, Token: p.token, Picture: &info})
}

// Params 最近记录的图像参数
func (p *Probe) Params() []avs2.PictureRecord {
	if p.recorder == nil {
		return nil
	}
	return p.recorder.Records()
}

// DPB 最近一次解码后的 DPB 快照
func (p *Probe) DPB() []avs2.FrameInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]avs2.FrameInfo(nil), p.dpb...)
}

// Pictures 最近输出的图像，旧的在前
func (p *Probe) Pictures() []PictureInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]PictureInfo(nil), p.pictures...)
}

// Sample 解码计数
func (p *Probe) Sample() stats.DecodeSample {
	return p.counter.GetSample()
}

// countingPipeline 统计完成解码的图像
type countingPipeline struct {
	counter stats.Decode
}

func (cp *countingPipeline) StartPicture(pc *avs2.PictureContext) error { return nil }
func (cp *countingPipeline) SubmitSlice(pc *avs2.PictureContext, slc *avs2.SliceHeader, data []byte) error {
	return nil
}
func (cp *countingPipeline) EndPicture(pc *avs2.PictureContext) error {
	cp.counter.AddPicture()
	return nil
}
