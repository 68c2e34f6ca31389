// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import "github.com/cnotch/avs2probe/utils/bits"

// WQMatrix 加权量化矩阵
type WQMatrix struct {
	M44 [16]uint8 `json:"m44"`
	M88 [64]uint8 `json:"m88"`
}

var defaultWQM = WQMatrix{
	M44: [16]uint8{
		64, 64, 64, 68,
		64, 64, 68, 72,
		64, 68, 76, 80,
		72, 76, 84, 96,
	},
	M88: [64]uint8{
		64, 64, 64, 64, 68, 68, 72, 76,
		64, 64, 64, 68, 72, 76, 84, 92,
		64, 64, 68, 72, 76, 80, 88, 100,
		64, 68, 72, 80, 84, 92, 100, 112,
		68, 72, 80, 84, 92, 104, 112, 128,
		76, 80, 84, 92, 104, 116, 132, 152,
		96, 100, 104, 116, 124, 140, 164, 188,
		104, 108, 116, 128, 152, 172, 192, 216,
	},
}

// DefaultWQMatrix returns the built-in weighted quantization matrix.
func DefaultWQMatrix() WQMatrix {
	return defaultWQM
}

func (wqm *WQMatrix) decode(r *bits.Reader) {
	for i := range wqm.M44 {
		wqm.M44[i] = r.ReadUe8()
	}
	for i := range wqm.M88 {
		wqm.M88[i] = r.ReadUe8()
	}
}

// 加权量化模型参数的下标： l a b c d h
//                        0 1 2 3 4 5
var wqModel88 = [4][64]uint8{
	{ // Mode 0
		0, 0, 0, 4, 4, 4, 5, 5,
		0, 0, 3, 3, 3, 3, 5, 5,
		0, 3, 2, 2, 1, 1, 5, 5,
		4, 3, 2, 2, 1, 5, 5, 5,
		4, 3, 1, 1, 5, 5, 5, 5,
		4, 3, 1, 5, 5, 5, 5, 5,
		5, 5, 5, 5, 5, 5, 5, 5,
		5, 5, 5, 5, 5, 5, 5, 5},
	{ // Mode 1
		0, 0, 0, 4, 4, 4, 5, 5,
		0, 0, 4, 4, 4, 4, 5, 5,
		0, 3, 2, 2, 2, 1, 5, 5,
		3, 3, 2, 2, 1, 5, 5, 5,
		3, 3, 2, 1, 5, 5, 5, 5,
		3, 3, 1, 5, 5, 5, 5, 5,
		5, 5, 5, 5, 5, 5, 5, 5,
		5, 5, 5, 5, 5, 5, 5, 5},
	{ // Mode 2
		0, 0, 0, 4, 4, 3, 5, 5,
		0, 0, 4, 4, 3, 2, 5, 5,
		0, 4, 4, 3, 2, 1, 5, 5,
		4, 4, 3, 2, 1, 5, 5, 5,
		4, 3, 2, 1, 5, 5, 5, 5,
		3, 2, 1, 5, 5, 5, 5, 5,
		5, 5, 5, 5, 5, 5, 5, 5,
		5, 5, 5, 5, 5, 5, 5, 5},
	{ // Mode 3
		0, 0, 0, 3, 2, 1, 5, 5,
		0, 0, 4, 3, 2, 1, 5, 5,
		0, 4, 4, 3, 2, 1, 5, 5,
		3, 3, 3, 3, 2, 5, 5, 5,
		2, 2, 2, 2, 5, 5, 5, 5,
		1, 1, 1, 5, 5, 5, 5, 5,
		5, 5, 5, 5, 5, 5, 5, 5,
		5, 5, 5, 5, 5, 5, 5, 5},
}

var wqModel44 = [4][16]uint8{
	{ // Mode 0
		0, 4, 3, 5,
		4, 2, 1, 5,
		3, 1, 1, 5,
		5, 5, 5, 5},
	{ // Mode 1
		0, 4, 4, 5,
		3, 2, 2, 5,
		3, 2, 1, 5,
		5, 5, 5, 5},
	{ // Mode 2
		0, 4, 3, 5,
		4, 3, 2, 5,
		3, 2, 1, 5,
		5, 5, 5, 5},
	{ // Mode 3
		0, 3, 1, 5,
		3, 4, 2, 5,
		1, 2, 2, 5,
		5, 5, 5, 5},
}

var defaultWQParam = [2][6]int{
	{67, 71, 71, 80, 80, 106},
	{64, 49, 53, 58, 58, 64},
}

// WQParams resolves the six model parameters of a picture level update.
// paramIndex 0 selects the second default set, 1 and 2 add deltas to the
// corresponding default set.
func WQParams(paramIndex int, deltas *[2][6]int) (param [6]int8) {
	switch paramIndex {
	case 0:
		for i := range param {
			param[i] = int8(defaultWQParam[1][i])
		}
	case 1, 2:
		for i := range param {
			param[i] = int8(deltas[paramIndex-1][i] + defaultWQParam[paramIndex-1][i])
		}
	}
	return
}

// ModelWQMatrix expands the six model parameters into both matrices.
func ModelWQMatrix(model int, param [6]int8) (wqm WQMatrix) {
	for i := range wqm.M88 {
		wqm.M88[i] = uint8(param[wqModel88[model][i]])
	}
	for i := range wqm.M44 {
		wqm.M44[i] = uint8(param[wqModel44[model][i]])
	}
	return
}
