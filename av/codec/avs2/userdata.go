// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avs2

import "github.com/cnotch/xlog"

// IsPrintableUserData reports whether every byte of data is printable ASCII.
func IsPrintableUserData(data []byte) bool {
	for _, b := range data {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

// LogUserData writes a user data unit to the debug log, as text when it is
// printable and as hex otherwise.
func LogUserData(data []byte, logger *xlog.Logger) {
	if logger == nil {
		logger = xlog.L()
	}
	if !logger.LevelEnabled(xlog.DebugLevel) {
		return
	}
	if IsPrintableUserData(data) {
		logger.Debugf("got user data: %s", data)
		return
	}
	logger.Debugf("got user data: % x", data)
}
