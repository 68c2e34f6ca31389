// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

// FindStartCode 从 data[from:] 查找下一个 00 00 01 xx 起始码。
// 找到时返回紧随起始码类型字节之后的位置和 32 位起始码值。
func FindStartCode(data []byte, from int) (next int, code uint32, ok bool) {
	for i := from; i+3 < len(data); i++ {
		if data[i+2] > 1 {
			// 第三个字节既不是 0 也不是 1，可以跳过 3 个字节
			i += 2
			continue
		}
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			return i + 4, 0x100 | uint32(data[i+3]), true
		}
	}
	return len(data), 0, false
}
