// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/xlog"
)

// Option 配置 Session 的选项接口
type Option interface {
	apply(*Session)
}

// optionFunc 包装函数以便它满足 Option 接口
type optionFunc func(*Session)

func (f optionFunc) apply(s *Session) {
	f(s)
}

// Logger 日志选项
func Logger(logger *xlog.Logger) Option {
	return optionFunc(func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// Pipeline 像素管线选项
func Pipeline(p PixelPipeline) Option {
	return optionFunc(func(s *Session) {
		s.pipeline = p
	})
}

// Allocator 像素缓冲分配器选项
func Allocator(alloc BufferAllocator) Option {
	return optionFunc(func(s *Session) {
		s.alloc = alloc
	})
}

// Session 一路基本流的解码会话，持有跨包的全部解析状态和 DPB。
// Session 不是并发安全的。
type Session struct {
	seq    SeqHeader
	gotSeq bool
	pic    PicHeader
	slc    SliceHeader
	exts   Extensions

	splitter *Splitter
	dpb      *DPB
	pc       PictureContext
	pipeline PixelPipeline
	alloc    BufferAllocator
	logger   *xlog.Logger

	warnedNoPipeline bool
}

// NewSession creates a decode session.
func NewSession(opts ...Option) *Session {
	s := &Session{logger: xlog.L()}
	for _, opt := range opts {
		opt.apply(s)
	}
	s.seq.Reset()
	s.splitter = NewSplitter(s.logger)
	s.dpb = NewDPB(s.alloc, s.logger)
	return s
}

// SeqHeader returns the active sequence header, false before the first one.
func (s *Session) SeqHeader() (SeqHeader, bool) {
	return s.seq, s.gotSeq
}

// Extensions returns the extensions parsed so far.
func (s *Session) Extensions() Extensions {
	return s.exts
}

// DPB returns the decoded picture buffer of the session.
func (s *Session) DPB() *DPB {
	return s.dpb
}

// Metadata returns the stream metadata derived from the sequence header.
func (s *Session) Metadata() codec.VideoMeta {
	vm := codec.VideoMeta{Codec: "AVS2"}
	if s.gotSeq {
		FillMetadata(&vm, &s.seq)
	}
	return vm
}

func (s *Session) decodeSeqHeader(data []byte) error {
	var seq SeqHeader
	if err := seq.Decode(data); err != nil {
		s.logger.Errorf("decode sequence header failed: %v", err)
		return err
	}

	if !s.gotSeq || s.seq.Width != seq.Width || s.seq.Height != seq.Height {
		s.logger.Infof("got seq header: %dx%d, lcu:%d, profile=%s, level=0x%02x",
			seq.Width, seq.Height, seq.Log2LCUSize, seq.Profile, uint8(seq.Level))
		if err := CheckLevel(&seq); err != nil {
			s.logger.Warn(err.Error())
		}
	}
	s.seq = seq
	s.gotSeq = true
	return nil
}

// DecodeExtradata applies out-of-band configuration: sequence headers,
// sequence level extensions and user data only.
func (s *Session) DecodeExtradata(data []byte) error {
	units, err := s.splitter.Split(data)
	if err != nil {
		return err
	}

	for _, u := range units {
		payload := u.Payload(data)
		switch u.StartCode {
		case StartCodeSeqHeader:
			err = s.decodeSeqHeader(payload)
		case StartCodeExtension:
			_, err = s.exts.Decode(payload, true, &s.seq, nil, s.logger)
		case StartCodeUserData:
			LogUserData(payload, s.logger)
		default:
			s.logger.Errorf("extradata contains unsupported start code 0x%08x", u.StartCode)
			return invalidf("start code 0x%08x in extradata", u.StartCode)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Decode decodes one access unit. An empty payload signals the end of the
// stream and drains one picture. At most one picture is returned; it may
// come with the error of a failed unit, since the DPB is updated even when
// a unit fails. The caller releases returned pictures.
func (s *Session) Decode(frame *codec.Frame) (*Picture, error) {
	if frame == nil || len(frame.Payload) == 0 {
		return s.Drain(), nil
	}

	if len(frame.NewExtradata) > 0 {
		s.logger.Debugf("new extradata found")
		if err := s.DecodeExtradata(frame.NewExtradata); err != nil {
			return nil, err
		}
	}

	err := s.decodeFrameData(frame.Payload)

	s.dpb.UpdateMarks()
	out := s.dpb.Output()
	s.dpb.RemoveRemovable()
	s.dpb.Trace("end of pic")
	s.dpb.ClearCurrent()
	s.pc = PictureContext{}
	return out, err
}

func (s *Session) decodeFrameData(data []byte) (err error) {
	units, err := s.splitter.Split(data)
	if err != nil {
		return err
	}

	gotPicHeader := false
	for _, u := range units {
		payload := u.Payload(data)
		switch {
		case u.StartCode == StartCodeSeqHeader:
			if gotPicHeader {
				s.logger.Error("sequence header should come before picture header")
				return invalidf("sequence header after picture header")
			}
			err = s.decodeSeqHeader(payload)
		case u.StartCode == StartCodeExtension:
			_, err = s.exts.Decode(payload, !gotPicHeader, &s.seq, &s.pic, s.logger)
		case u.StartCode == StartCodeUserData:
			LogUserData(payload, s.logger)
		case IsPictureStartCode(u.StartCode):
			if !s.gotSeq {
				s.logger.Error("no sequence header before picture header")
				return invalidf("picture header before sequence header")
			}
			if gotPicHeader {
				s.logger.Error("more than one picture header in packet")
				return invalidf("second picture header in packet")
			}
			if err = s.startPicture(u.StartCode, payload); err != nil {
				return err
			}
			gotPicHeader = true
		case u.StartCode == StartCodeSeqEnd, u.StartCode == StartCodeVideoEdit:
		case IsSliceStartCode(u.StartCode):
			if !gotPicHeader {
				s.logger.Error("no picture header before slice data")
				return invalidf("slice before picture header")
			}
			err = s.decodeSlice(payload)
		default:
			s.logger.Errorf("unsupported start code 0x%08x", u.StartCode)
			return invalidf("start code 0x%08x", u.StartCode)
		}
		if err != nil {
			return err
		}
	}

	if cur := s.dpb.Current(); cur != nil && cur.NumSlice > 0 {
		if s.pipeline != nil {
			if err = s.pipeline.EndPicture(&s.pc); err != nil {
				return err
			}
		}
		cur.Marks |= MarkDecoded
	}
	return nil
}

func (s *Session) startPicture(startCode uint32, data []byte) error {
	if err := s.pic.Decode(startCode, data, &s.seq); err != nil {
		s.logger.Errorf("decode picture header failed: %v", err)
		return err
	}
	if s.logger.LevelEnabled(xlog.DebugLevel) {
		ra := true
		if d, ok := s.pic.Data.(InterData); ok {
			ra = d.RandomAccess
		}
		s.logger.Debugf("<%s>, ra:%t, tid=%d, doi=%d, poi=%d",
			s.pic.Type(), ra, s.pic.TemporalID, s.pic.DOI, s.pic.POI(&s.seq))
	}

	s.dpb.Trace("start of pic")
	cur, err := s.dpb.Acquire(&s.seq, &s.pic)
	if err != nil {
		return err
	}

	s.pc = PictureContext{Seq: &s.seq, Frame: cur, DPB: s.dpb}
	if s.pipeline != nil {
		return s.pipeline.StartPicture(&s.pc)
	}
	return nil
}

func (s *Session) decodeSlice(data []byte) error {
	cur := s.dpb.Current()
	if cur == nil {
		return invalidf("slice without current picture")
	}
	cur.NumSlice++

	if err := s.slc.Decode(data, &s.seq, &cur.Header); err != nil {
		s.logger.Errorf("decode slice header failed: %v", err)
		return err
	}
	if s.logger.LevelEnabled(xlog.DebugLevel) {
		s.logger.Debugf("slice[%d, %d] qp=%d", s.slc.LCUX, s.slc.LCUY, s.slc.QP)
	}

	if s.pipeline == nil {
		if !s.warnedNoPipeline {
			s.logger.Warn("no pixel pipeline attached, pictures carry no decoded pixels")
			s.warnedNoPipeline = true
		}
		return nil
	}
	return s.pipeline.SubmitSlice(&s.pc, &s.slc, data)
}

// Drain handles the end of the stream: every resident picture becomes
// outputable and the next one in output order is returned. Call it until
// it returns nil.
func (s *Session) Drain() *Picture {
	s.dpb.MarkEOS()
	out := s.dpb.Output()
	s.dpb.RemoveRemovable()
	s.dpb.Trace("end of stream")
	return out
}

// Flush drops every picture, used on stream discontinuities.
func (s *Session) Flush() {
	s.pc = PictureContext{}
	s.dpb.Flush()
}

// Close releases the session's pictures.
func (s *Session) Close() error {
	s.Flush()
	return nil
}
