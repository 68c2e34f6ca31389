// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scan splits attribute strings such as sdp fmtp parameters.
package scan

import (
	"strings"
	"unicode"
)

// 预定义扫描器
var (
	// Semicolon 分号分割
	Semicolon = Scanner{Delim: ';', Trim: unicode.IsSpace}
	// EqualPair 扫描 K=V 形式的字串
	EqualPair = Pair{Delim: '=', Trim: isSpaceOrQuote}
)

func isSpaceOrQuote(r rune) bool {
	return unicode.IsSpace(r) || r == '"'
}

// Scanner 按分割符逐个取出 token
type Scanner struct {
	Delim rune
	Trim  func(r rune) bool
}

func (s Scanner) trim(str string) string {
	if s.Trim == nil {
		return str
	}
	return strings.TrimFunc(str, s.Trim)
}

// Scan 返回第一个 token 和剩余部分；没有分割符时 more 为 false
func (s Scanner) Scan(str string) (advance, token string, more bool) {
	i := strings.IndexRune(str, s.Delim)
	if i < 0 {
		return "", s.trim(str), false
	}
	return s.trim(str[i+len(string(s.Delim)):]), s.trim(str[:i]), true
}

// Pair 从 token 中取出 Key Value
type Pair struct {
	Delim rune
	Trim  func(r rune) bool
}

// Scan 提取 K V，key 为空时 found 为 false
func (p Pair) Scan(s string) (key, value string, found bool) {
	i := strings.IndexRune(s, p.Delim)
	if i < 0 {
		return s, "", false
	}
	key, value = s[:i], s[i+len(string(p.Delim)):]
	if p.Trim != nil {
		key = strings.TrimFunc(key, p.Trim)
		value = strings.TrimFunc(value, p.Trim)
	}
	return key, value, key != ""
}

// Params 解析 "k1=v1; k2=v2" 形式的参数列表，key 转为小写
func Params(s string) map[string]string {
	params := make(map[string]string)
	for more := s != ""; more; {
		var token string
		s, token, more = Semicolon.Scan(s)
		if k, v, ok := EqualPair.Scan(token); ok {
			params[strings.ToLower(k)] = v
		}
	}
	return params
}
