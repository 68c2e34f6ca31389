// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

var pseudoBitMask = [8]byte{0x00, 0x00, 0xc0, 0x00, 0xf0, 0x00, 0xfc, 0x00}

// RemovePseudoCode removes the pseudo start code padding of src into dst and
// returns the number of bytes written. A byte preceded by 00 00 and equal to
// 02 carries only its 6 high bits. len(dst) must be at least len(src).
func RemovePseudoCode(dst, src []byte) int {
	if len(src) == 0 {
		return 0
	}
	_ = dst[len(src)-1] // bounds check hint to compiler; see golang.org/issue/14808

	n := 0
	for n < 2 && n < len(src) {
		dst[n] = src[n]
		n++
	}

	var last byte
	lastBits := 0
	for i := 2; i < len(src); i++ {
		cur := src[i]
		if src[i-2] == 0 && src[i-1] == 0 && cur == 0x02 {
			// 6 有效位
			if lastBits == 0 {
				last = cur
				lastBits = 6
				continue
			}
			dst[n] = (last & pseudoBitMask[lastBits]) | ((cur & pseudoBitMask[8-lastBits]) >> uint(lastBits))
			n++
			last = (cur << uint(8-lastBits)) & pseudoBitMask[lastBits-2]
			lastBits -= 2
			continue
		}

		if lastBits == 0 {
			dst[n] = cur
		} else {
			dst[n] = (last & pseudoBitMask[lastBits]) | ((cur & pseudoBitMask[8-lastBits]) >> uint(lastBits))
			last = (cur << uint(8-lastBits)) & pseudoBitMask[lastBits]
		}
		n++
	}

	// 只输出剩余的有效比特
	if lastBits != 0 && last&pseudoBitMask[lastBits] != 0 {
		dst[n] = last & pseudoBitMask[lastBits]
		n++
	}
	return n
}

// removePseudoCode returns a new slice holding src without pseudo start codes.
func removePseudoCode(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := make([]byte, len(src))
	return dst[:RemovePseudoCode(dst, src)]
}
