// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
)

// EncodeJSON 以缩进格式把 obj 编码到 w
func EncodeJSON(w io.Writer, obj interface{}) error {
	body, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	var formatted bytes.Buffer
	if err := json.Indent(&formatted, body, "", "\t"); err != nil {
		return err
	}
	formatted.WriteByte('\n')

	_, err = w.Write(formatted.Bytes())
	return err
}

// EncodeJSONFile 编码 JSON 文件
func EncodeJSONFile(path string, obj interface{}) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	defer f.Close()

	if err := EncodeJSON(f, obj); err != nil {
		return err
	}
	return f.Sync()
}
