// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

import "strconv"

// Rational 有理数，如帧率和像素宽高比
type Rational struct {
	Num int `json:"num"`
	Den int `json:"den"`
}

// NewRational returns num/den reduced to lowest terms.
func NewRational(num, den int) Rational {
	return Rational{num, den}.Reduce()
}

// Reduce returns the rational reduced to lowest terms.
func (q Rational) Reduce() Rational {
	a, b := q.Num, q.Den
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a <= 1 {
		return q
	}
	return Rational{q.Num / a, q.Den / a}
}

// Float64 returns the value of the rational, 0 when Den is 0.
func (q Rational) Float64() float64 {
	if q.Den == 0 {
		return 0
	}
	return float64(q.Num) / float64(q.Den)
}

// IsZero reports whether the numerator is 0.
func (q Rational) IsZero() bool {
	return q.Num == 0
}

func (q Rational) String() string {
	return strconv.Itoa(q.Num) + "/" + strconv.Itoa(q.Den)
}

// VideoMeta 视频元数据
type VideoMeta struct {
	Codec          string   `json:"codec"`
	Profile        int      `json:"profile,omitempty"`
	Level          int      `json:"level,omitempty"`
	Width          int      `json:"width,omitempty"`
	Height         int      `json:"height,omitempty"`
	BitDepth       int      `json:"bitdepth,omitempty"`
	PixelFormat    string   `json:"pixfmt,omitempty"`
	FixedFrameRate bool     `json:"fixedframerate,omitempty"`
	FrameRate      float64  `json:"framerate,omitempty"`
	FrameRateQ     Rational `json:"framerateq"`
	SampleAspect   Rational `json:"sar"`
	HasBFrames     bool     `json:"hasbframes,omitempty"`
	MaxDPBSize     int      `json:"maxdpb,omitempty"`
	DataRate       float64  `json:"datarate,omitempty"`
	ClockRate      int      `json:"clockrate,omitempty"`
	// 带外配置数据，如 sdp 中的 config
	Extradata []byte `json:"-"`
}
