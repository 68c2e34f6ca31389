// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"encoding/hex"
	"testing"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/codec/avs2/avs2test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sdpTemplate = "v=0\r\n" +
	"o=- 0 0 IN IP4 127.0.0.1\r\n" +
	"s=avs2\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"t=0 0\r\n" +
	"m=video 0 RTP/AVP 96\r\n" +
	"b=AS:4000\r\n" +
	"a=rtpmap:96 AVS2/90000\r\n" +
	"a=fmtp:96 profile-id=32;level-id=64;config="

func TestParseMetadata(t *testing.T) {
	seq := avs2test.Default()
	rawsdp := sdpTemplate + hex.EncodeToString(seq.Header()) + "\r\n"

	var video codec.VideoMeta
	require.NoError(t, ParseMetadata(rawsdp, &video))
	assert.Equal(t, "AVS2", video.Codec)
	assert.Equal(t, 90000, video.ClockRate)
	assert.Equal(t, seq.Header(), video.Extradata)
	assert.Equal(t, 352, video.Width)
	assert.Equal(t, 288, video.Height)
	assert.Equal(t, 0x20, video.Profile)
	assert.Equal(t, 25.0, video.FrameRate)
}

func TestParseMetadata_NoConfig(t *testing.T) {
	rawsdp := sdpTemplate + "zz\r\n"
	var video codec.VideoMeta
	require.NoError(t, ParseMetadata(rawsdp, &video))
	assert.Equal(t, "AVS2", video.Codec)
	assert.Equal(t, 32, video.Profile)
	assert.Equal(t, 64, video.Level)
	assert.Empty(t, video.Extradata)
	assert.Zero(t, video.Width)
}

func TestParseMetadata_NoVideo(t *testing.T) {
	rawsdp := "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=audio\r\n" +
		"t=0 0\r\n" +
		"m=audio 0 RTP/AVP 97\r\n" +
		"a=rtpmap:97 MPEG4-GENERIC/44100/2\r\n"
	var video codec.VideoMeta
	assert.Equal(t, ErrNoVideo, ParseMetadata(rawsdp, &video))
}
