// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import (
	"errors"
	"fmt"
)

// 解码错误
var (
	// ErrInvalidData 码流不合规：非法起始码、标记位错误、字段越界、缺少参考帧等
	ErrInvalidData = errors.New("avs2: invalid data")
	// ErrOutOfBuffers DPB 无空闲槽位
	ErrOutOfBuffers = errors.New("avs2: no free dpb slot")
	// ErrResourceExhausted 像素缓冲分配器耗尽
	ErrResourceExhausted = errors.New("avs2: pixel buffers exhausted")
	// ErrOutOfMemory 缓冲尺寸超出可分配范围
	ErrOutOfMemory = errors.New("avs2: out of memory")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidData}, args...)...)
}

// recoverInvalid converts a bit reader overrun into ErrInvalidData.
func recoverInvalid(what string, err *error) {
	if r := recover(); r != nil {
		*err = invalidf("%s truncated: %v", what, r)
	}
}
