// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/codec/avs2"
	"github.com/cnotch/avs2probe/utils/scan"
	"github.com/pixelbender/go-sdp/sdp"
)

// ErrNoVideo sdp 中没有视频媒体
var ErrNoVideo = errors.New("sdp: no video media")

// ParseMetadata 从 sdp 中提取第一路视频的元数据。
// AVS2 的序列头由 fmtp 的 config 参数（十六进制，含起始码）带外给出。
func ParseMetadata(rawsdp string, video *codec.VideoMeta) error {
	session, err := sdp.ParseString(rawsdp)
	if err != nil {
		return err
	}

	for _, media := range session.Media {
		if media.Type != "video" || len(media.Format) == 0 {
			continue
		}

		video.Codec = strings.ToUpper(media.Format[0].Name)
		for _, bw := range media.Bandwidth {
			if bw.Type == "AS" {
				video.DataRate = float64(bw.Value)
			}
		}
		parseVideoMeta(media.Format[0], video)
		return nil
	}
	return ErrNoVideo
}

func parseVideoMeta(m *sdp.Format, video *codec.VideoMeta) {
	if m.ClockRate > 0 {
		video.ClockRate = m.ClockRate
	}
	if video.Codec != "AVS2" {
		return
	}

	for _, p := range m.Params {
		params := scan.Params(p)
		if v, ok := params["profile-id"]; ok {
			if id, err := strconv.Atoi(v); err == nil {
				video.Profile = id
			}
		}
		if v, ok := params["level-id"]; ok {
			if id, err := strconv.Atoi(v); err == nil {
				video.Level = id
			}
		}
		if v, ok := params["config"]; ok {
			video.Extradata = decodeConfig(v)
		}
	}

	if len(video.Extradata) > 0 {
		_ = avs2.MetadataIsReady(video)
	}
}

func decodeConfig(s string) []byte {
	if config, err := hex.DecodeString(s); err == nil {
		return config
	}
	if config, err := base64.StdEncoding.DecodeString(s); err == nil {
		return config
	}
	return nil
}
