// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import "github.com/cnotch/avs2probe/utils/bits"

// ALF 系数表下标
const (
	ALFLumaRegions = 16
	ALFCbIndex     = 16
	ALFCrIndex     = 17
	ALFTaps        = 9
)

// ALFParam 图像头中的自适应环路滤波参数（未经处理的原始语法值）
type ALFParam struct {
	Enable         [3]bool // Y U V
	NumFilter      int
	RegionDistance [ALFLumaRegions]int
	Luma           [ALFLumaRegions][ALFTaps]int
	Chroma         [2][ALFTaps]int
}

func (alf *ALFParam) decode(r *bits.Reader) error {
	*alf = ALFParam{}
	for i := range alf.RegionDistance {
		if i > 0 {
			alf.RegionDistance[i] = 1
		}
	}

	for i := range alf.Enable {
		alf.Enable[i] = r.ReadBool()
	}

	if alf.Enable[0] {
		alf.NumFilter = r.ReadUeInt() + 1
		if alf.NumFilter > ALFLumaRegions {
			return invalidf("alf filter count %d", alf.NumFilter)
		}
		for i := 0; i < alf.NumFilter; i++ {
			if i > 0 && alf.NumFilter != ALFLumaRegions {
				alf.RegionDistance[i] = r.ReadUeInt()
			}
			for j := 0; j < ALFTaps; j++ {
				alf.Luma[i][j] = r.ReadSeInt()
			}
		}
	}
	for i := range alf.Chroma {
		if alf.Enable[i+1] {
			for j := 0; j < ALFTaps; j++ {
				alf.Chroma[i][j] = r.ReadSeInt()
			}
		}
	}

	s := 0
	for i := 0; i < alf.NumFilter; i++ {
		s += alf.RegionDistance[i]
	}
	if s > ALFLumaRegions-1 {
		return invalidf("alf region distance sum %d", s)
	}
	return nil
}

// Coefficients distributes the luma filters over the 16 fixed regions and
// normalizes every 9-tap group. Entries 16 and 17 hold Cb and Cr.
func (alf *ALFParam) Coefficients() (coeff [ALFLumaRegions + 2][ALFTaps]int8) {
	if alf.Enable[0] {
		// distance:[0,2,3,5] -> tab:[0,0, 1,1,1, 2,2,2,2,2, 3,3,3,3,3,3]
		var tab [ALFLumaRegions]int
		c := 0
		n := alf.NumFilter
		if n > ALFLumaRegions {
			n = ALFLumaRegions
		}
		// 区域超出 16 个时截断，多余的滤波器不再使用
		for i := 1; i < n; i++ {
			for j := 0; j < alf.RegionDistance[i] && c < ALFLumaRegions-1; j++ {
				tab[c+1] = tab[c]
				c++
			}
			tab[c]++
		}
		for i := c; i < ALFLumaRegions; i++ {
			tab[i] = tab[c]
		}

		for i := 0; i < ALFLumaRegions; i++ {
			coeff[i] = amendALFCoeff(&alf.Luma[tab[i]])
		}
	}
	for i := range alf.Chroma {
		if alf.Enable[i+1] {
			coeff[ALFCbIndex+i] = amendALFCoeff(&alf.Chroma[i])
		}
	}
	return
}

// amendALFCoeff clamps the first 8 taps to [-64,63] and makes the centre
// tap keep the DC gain, clamped to [0,127].
func amendALFCoeff(src *[ALFTaps]int) (dst [ALFTaps]int8) {
	sum := src[8] + 64
	for i := 0; i < 8; i++ {
		dst[i] = int8(clip(src[i], -64, 63))
		sum -= 2 * int(dst[i])
	}
	dst[8] = int8(clip(sum, 0, 127))
	return
}

func clip(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
