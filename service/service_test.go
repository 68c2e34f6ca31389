// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"bytes"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/cnotch/avs2probe/av/codec/avs2/avs2test"
	"github.com/cnotch/avs2probe/av/format/rtp"
	"github.com/cnotch/xlog"
	pionrtp "github.com/pion/rtp"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *http.ServeMux) {
	s := &Service{logger: xlog.L()}
	mux := http.NewServeMux()
	s.initApis(mux)
	s.initWebsocket(mux)
	return s, mux
}

// rtpDump 把每个访问单元打成一个带 marker 的 rtp 包，输出交织格式
func rtpDump(t *testing.T, seq avs2test.Sequence, n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		pkt := pionrtp.Packet{
			Header: pionrtp.Header{
				Version:        2,
				Marker:         true,
				PayloadType:    96,
				SequenceNumber: uint16(i + 1),
				Timestamp:      uint32(i * 3600),
				SSRC:           0x1234,
			},
			Payload: seq.AccessUnit(i),
		}
		data, err := pkt.Marshal()
		require.NoError(t, err)

		p, err := rtp.NewPacket(rtp.ChannelVideo, data)
		require.NoError(t, err)
		require.NoError(t, p.Write(&buf, rtp.DefaultChannelConfig))
	}
	return buf.Bytes()
}

func sdpOf(seq avs2test.Sequence) string {
	return "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=avs2\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"b=AS:2000\r\n" +
		"a=rtpmap:96 AVS2/90000\r\n" +
		"a=fmtp:96 profile-id=32;level-id=64;config=" + hex.EncodeToString(seq.Header()) + "\r\n"
}
