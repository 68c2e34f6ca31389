/**********************************************************************************
* Copyright (c) 2009-2017 Misakai Ltd.
* This program is free software: you can redistribute it and/or modify it under the
* terms of the GNU Affero General Public License as published by the  Free Software
* Foundation, either version 3 of the License, or(at your option) any later version.
*
* This program is distributed  in the hope that it  will be useful, but WITHOUT ANY
* WARRANTY;  without even  the implied warranty of MERCHANTABILITY or FITNESS FOR A
* PARTICULAR PURPOSE.  See the GNU Affero General Public License  for  more details.
*
* You should have  received a copy  of the  GNU Affero General Public License along
* with this program. If not, see<http://www.gnu.org/licenses/>.
************************************************************************************/
//
// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package security generates the identifiers of decode sessions.
package security

import (
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// ID 进程内唯一的会话标识
type ID uint64

// 用启动时间做种子，避免进程重启后 ID 重复
var next = uint64(
	time.Since(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)).Seconds(),
)

// NewID generates a new, process-wide unique ID.
func NewID() ID {
	return ID(atomic.AddUint64(&next, 1))
}

// Token 由 ID、来源和盐生成不可猜测的会话令牌，用于 API 路径
func (id ID) Token(source string, salt string) string {
	buffer := make([]byte, 8, 8+len(source))
	binary.BigEndian.PutUint64(buffer, uint64(id))
	buffer = append(buffer, source...)

	enc := pbkdf2.Key(buffer, []byte(salt), 4096, 16, sha1.New)
	return strings.ToLower(strings.TrimRight(base32.StdEncoding.EncodeToString(enc), "="))
}

// String converts the ID to a string representation.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
