// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"errors"
	"testing"

	"github.com/cnotch/avs2probe/utils/bits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestALFParam_Coefficients(t *testing.T) {
	alf := ALFParam{Enable: [3]bool{true, false, false}, NumFilter: 4}
	alf.RegionDistance = [16]int{0, 2, 3, 5}
	for k := 0; k < 4; k++ {
		alf.Luma[k][0] = k
	}

	coeff := alf.Coefficients()
	want := [16]int8{0, 0, 1, 1, 1, 2, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3}
	for i := 0; i < ALFLumaRegions; i++ {
		assert.Equal(t, want[i], coeff[i][0], "region %d", i)
		assert.Equal(t, int8(64-2*want[i]), coeff[i][8], "region %d", i)
	}
	assert.Equal(t, int8(60), coeff[5][8])
}

func TestALFParam_CoefficientsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		alf         ALFParam
		first, last int8 // 首尾区域使用的滤波器
	}{
		{"distance sum", ALFParam{Enable: [3]bool{true}, NumFilter: 2,
			RegionDistance: [16]int{0, 16}}, 0, 1},
		{"filter count", ALFParam{Enable: [3]bool{true}, NumFilter: 40,
			RegionDistance: [16]int{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}}, 0, 15},
		{"last regions share", ALFParam{Enable: [3]bool{true}, NumFilter: 3,
			RegionDistance: [16]int{0, 15, 0}}, 0, 2},
		{"negative distance", ALFParam{Enable: [3]bool{true}, NumFilter: 3,
			RegionDistance: [16]int{0, -4, 2}}, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k := range tt.alf.Luma {
				tt.alf.Luma[k][0] = k
			}
			var coeff [ALFLumaRegions + 2][ALFTaps]int8
			require.NotPanics(t, func() { coeff = tt.alf.Coefficients() })
			assert.Equal(t, tt.first, coeff[0][0])
			assert.Equal(t, tt.last, coeff[ALFLumaRegions-1][0])
		})
	}
}

func TestAmendALFCoeff(t *testing.T) {
	tests := []struct {
		name string
		src  [9]int
		want [9]int8
	}{
		{"zero", [9]int{}, [9]int8{0, 0, 0, 0, 0, 0, 0, 0, 64}},
		{"clip taps", [9]int{100, -100, 0, 0, 0, 0, 0, 0, 0}, [9]int8{63, -64, 0, 0, 0, 0, 0, 0, 66}},
		{"clip centre high", [9]int{-64, -64, 0, 0, 0, 0, 0, 0, 0}, [9]int8{-64, -64, 0, 0, 0, 0, 0, 0, 127}},
		{"clip centre low", [9]int{63, 63, 0, 0, 0, 0, 0, 0, 0}, [9]int8{63, 63, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, amendALFCoeff(&tt.src))
		})
	}
}

func TestALFParam_Decode(t *testing.T) {
	t.Run("sixteen filters", func(t *testing.T) {
		src := ALFParam{Enable: [3]bool{true, true, false}, NumFilter: 16}
		for i := range src.Luma {
			src.Luma[i][8] = i
		}
		src.Chroma[0][0] = -3
		w := bits.NewWriter(64)
		writeALF(w, &src)
		w.Write(0xff, 8)

		var alf ALFParam
		require.NoError(t, alf.decode(bits.NewReader(w.Bytes())))
		assert.Equal(t, 16, alf.NumFilter)
		assert.Equal(t, 1, alf.RegionDistance[15])
		assert.Equal(t, src.Luma, alf.Luma)
		assert.Equal(t, -3, alf.Chroma[0][0])

		coeff := alf.Coefficients()
		for i := 0; i < ALFLumaRegions; i++ {
			assert.Equal(t, int8(64+i), coeff[i][8])
		}
	})

	t.Run("distance sum", func(t *testing.T) {
		src := ALFParam{Enable: [3]bool{true, false, false}, NumFilter: 3}
		src.RegionDistance[1] = 8
		src.RegionDistance[2] = 8
		w := bits.NewWriter(64)
		writeALF(w, &src)
		w.Write(0xff, 8)

		var alf ALFParam
		err := alf.decode(bits.NewReader(w.Bytes()))
		assert.True(t, errors.Is(err, ErrInvalidData))
	})

	t.Run("filter count", func(t *testing.T) {
		w := bits.NewWriter(8)
		w.Write(4, 3)  // 仅亮度
		w.WriteUe(16) // 17 个滤波器
		w.Write(0xff, 8)

		var alf ALFParam
		err := alf.decode(bits.NewReader(w.Bytes()))
		assert.True(t, errors.Is(err, ErrInvalidData))
	})
}
