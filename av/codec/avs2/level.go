// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"fmt"

	"github.com/cnotch/avs2probe/av/codec"
)

// LevelLimit 级别限制
type LevelLimit struct {
	Level      Level
	Width      int
	Height     int
	FrameRate  int
	Slices     int
	SampleRate uint64
	BitRate    uint64
	BBVSize    uint64
}

var levelLimits = [...]LevelLimit{
	//  level,         w,    h,  fr, slc,         sr,        br,       bbv
	{LevelForbidden, 0, 0, 0, 0, 0, 0, 0},

	{Level2_0_15, 352, 288, 15, 16, 1520640, 1500000, 1507328},
	{Level2_0_30, 352, 288, 30, 16, 3041280, 2000000, 2015232},
	{Level2_0_60, 352, 288, 60, 16, 6082560, 2500000, 2506752},

	{Level4_0_30, 720, 576, 30, 32, 12441600, 6000000, 6012928},
	{Level4_0_60, 720, 576, 60, 32, 24883200, 10000000, 10010624},

	{Level6_0_30, 2048, 1152, 30, 64, 66846720, 12000000, 12009472},
	{Level6_2_30, 2048, 1152, 30, 64, 66846720, 30000000, 30015488},
	{Level6_0_60, 2048, 1152, 60, 64, 133693440, 20000000, 20004864},
	{Level6_2_60, 2048, 1152, 60, 64, 133693440, 50000000, 50003968},
	{Level6_0_120, 2048, 1152, 120, 64, 267386880, 25000000, 25001984},
	{Level6_2_120, 2048, 1152, 120, 64, 267386880, 100000000, 100007936},

	{Level8_0_30, 4096, 2304, 30, 128, 283115520, 25000000, 25001984},
	{Level8_2_30, 4096, 2304, 30, 128, 283115520, 100000000, 100007936},
	{Level8_0_60, 4096, 2304, 60, 128, 566231040, 40000000, 40009728},
	{Level8_2_60, 4096, 2304, 60, 128, 566231040, 160000000, 160006144},
	{Level8_0_120, 4096, 2304, 120, 128, 1132462080, 60000000, 60014592},
	{Level8_2_120, 4096, 2304, 120, 128, 1132462080, 240000000, 240009216},

	{Level10_0_30, 8192, 4608, 30, 256, 1069547520, 60000000, 60014592},
	{Level10_2_30, 8192, 4608, 30, 256, 1069547520, 240000000, 240009216},
	{Level10_0_60, 8192, 4608, 60, 256, 2139095040, 120000000, 120012800},
	{Level10_2_60, 8192, 4608, 60, 256, 2139095040, 480000000, 480002048},
	{Level10_0_120, 8192, 4608, 120, 256, 4278190080, 240000000, 240009216},
	{Level10_2_120, 8192, 4608, 120, 256, 4278190080, 800000000, 800014336},
}

// LevelLimitOf returns the limits of level, nil if the level is unknown.
func LevelLimitOf(level Level) *LevelLimit {
	for i := range levelLimits {
		if levelLimits[i].Level == level {
			return &levelLimits[i]
		}
	}
	return nil
}

// CheckLevel reports the first property of seq that exceeds the limits of
// its level. The limits are advisory, decoding goes on regardless.
func CheckLevel(seq *SeqHeader) error {
	limit := LevelLimitOf(seq.Level)
	if limit == nil || seq.Level == LevelForbidden {
		return fmt.Errorf("unknown level 0x%02x", uint8(seq.Level))
	}
	if seq.Width > limit.Width || seq.Height > limit.Height {
		return fmt.Errorf("level 0x%02x: %dx%d exceeds %dx%d",
			uint8(seq.Level), seq.Width, seq.Height, limit.Width, limit.Height)
	}
	if fr := seq.FrameRate(); !fr.IsZero() && fr.Float64() > float64(limit.FrameRate) {
		return fmt.Errorf("level 0x%02x: frame rate %.2f exceeds %d",
			uint8(seq.Level), fr.Float64(), limit.FrameRate)
	}
	if seq.BitRate > 0 && uint64(seq.BitRate) > limit.BitRate {
		return fmt.Errorf("level 0x%02x: bit rate %d exceeds %d",
			uint8(seq.Level), seq.BitRate, limit.BitRate)
	}
	return nil
}

// CUAlignSize returns the picture size rounded up to the minimum coding unit.
func CUAlignSize(seq *SeqHeader) (w, h int) {
	return seq.MinCUWidth() * MiniSize, seq.MinCUHeight() * MiniSize
}

// MaxDPBSize returns the number of reference pictures the level allows at
// the sequence resolution. The pool itself always has MaxDPBCount slots.
func MaxDPBSize(seq *SeqHeader) int {
	aw, ah := CUAlignSize(seq)
	area := aw * ah
	if area == 0 {
		return MaxDPBCount - 1
	}

	ret := MaxDPBCount
	switch {
	case seq.Level <= Level4_0_60:
		return MaxDPBCount - 1
	case seq.Level <= Level6_2_120:
		ret = 13369344 / area
	case seq.Level <= Level8_2_120:
		ret = 56623104 / area
	case seq.Level <= Level10_2_120:
		ret = 213909504 / area
	}

	if ret > MaxDPBCount {
		ret = MaxDPBCount
	}
	if ret < 1 {
		return 0
	}
	return ret - 1
}

// FrameRateOf maps a frame_rate_code to a rational, 0/1 for unknown codes.
func FrameRateOf(code uint8) codec.Rational {
	switch code {
	case 1:
		return codec.Rational{Num: 24000, Den: 1001}
	case 2:
		return codec.Rational{Num: 24, Den: 1}
	case 3:
		return codec.Rational{Num: 25, Den: 1}
	case 4:
		return codec.Rational{Num: 30000, Den: 1001}
	case 5:
		return codec.Rational{Num: 30, Den: 1}
	case 6:
		return codec.Rational{Num: 50, Den: 1}
	case 7:
		return codec.Rational{Num: 60000, Den: 1001}
	case 8:
		return codec.Rational{Num: 60, Den: 1}
	case 9:
		return codec.Rational{Num: 100, Den: 1}
	case 10:
		return codec.Rational{Num: 120, Den: 1}
	case 11:
		return codec.Rational{Num: 200, Den: 1}
	case 12:
		return codec.Rational{Num: 240, Den: 1}
	case 13:
		return codec.Rational{Num: 300, Den: 1}
	default:
		return codec.Rational{Num: 0, Den: 1}
	}
}
