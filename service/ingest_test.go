// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"bufio"
	"bytes"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cnotch/avs2probe/av/codec/avs2/avs2test"
	"github.com/cnotch/avs2probe/av/format/rtp"
	"github.com/cnotch/avs2probe/network/websocket"
	"github.com/cnotch/avs2probe/probe"
	"github.com/cnotch/avs2probe/stats"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestConn(t *testing.T) {
	defer probe.UnregistAll()
	s, _ := newTestService()

	seq := avs2test.Default()
	dump := rtpDump(t, seq, 8)
	// 未配置的通道被忽略
	dump = append([]byte{'$', 7, 0, 2, 0xaa, 0xbb}, dump...)

	client, server := net.Pipe()
	go func() {
		client.Write(dump)
		client.Close()
	}()

	before := stats.IngestConns.GetSample()
	s.ingestConn(server, "tcp://pipe")
	after := stats.IngestConns.GetSample()
	assert.Equal(t, before.Total+1, after.Total)
	assert.Equal(t, before.Active, after.Active)

	_, infos := probe.Infos("", 10)
	require.Len(t, infos, 1)
	info := infos[0]
	assert.Equal(t, "tcp://pipe", info.Source)
	assert.Equal(t, "finished", info.Status)
	assert.Equal(t, int64(8), info.Decode.Outputs)
	assert.Zero(t, info.Lost)
}

func TestReadPackets(t *testing.T) {
	var packets []*rtp.Packet
	w := packetWriterFunc(func(p *rtp.Packet) error {
		packets = append(packets, p)
		return nil
	})

	dump := rtpDump(t, avs2test.Default(), 3)
	require.NoError(t, readPackets(bufio.NewReader(bytes.NewReader(dump)), w))
	assert.Len(t, packets, 3)

	// 截断的包
	err := readPackets(bufio.NewReader(bytes.NewReader(dump[:len(dump)-1])), w)
	assert.Error(t, err)

	err = readPackets(bufio.NewReader(strings.NewReader("RTSP/1.0 200 OK\r\n")), w)
	assert.Equal(t, rtp.ErrPrefix, err)
}

type packetWriterFunc func(p *rtp.Packet) error

func (f packetWriterFunc) WriteRtpPacket(p *rtp.Packet) error { return f(p) }

func TestWebsocket_IngestAndEvents(t *testing.T) {
	defer probe.UnregistAll()
	_, mux := newTestService()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	// 没有的会话
	_, resp, err := gorilla.DefaultDialer.Dial(wsURL+"/ws/events/nonexistent", nil)
	require.Error(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	dialer := gorilla.Dialer{Subprotocols: []string{websocket.SubprotocolRTP}}
	ingest, _, err := dialer.Dial(wsURL+"/ws/ingest", nil)
	require.NoError(t, err)

	var p *probe.Probe
	require.Eventually(t, func() bool {
		_, infos := probe.Infos("", 1)
		if len(infos) == 0 {
			return false
		}
		p = probe.Get(infos[0].Token)
		return p != nil
	}, 5*time.Second, 10*time.Millisecond)

	events, _, err := gorilla.DefaultDialer.Dial(wsURL+"/ws/events/"+p.Token(), nil)
	require.NoError(t, err)
	defer events.Close()
	require.Eventually(t, func() bool { return p.SubscriberCount() == 1 },
		5*time.Second, 10*time.Millisecond)

	require.NoError(t, ingest.WriteMessage(gorilla.BinaryMessage, rtpDump(t, avs2test.Default(), 4)))
	ingest.Close()

	var types []string
	for {
		var e struct {
			Type string `json:"type"`
		}
		if err := events.ReadJSON(&e); err != nil {
			break
		}
		types = append(types, e.Type)
		if e.Type == probe.EventEnd {
			break
		}
	}
	require.Len(t, types, 5)
	assert.Equal(t, probe.EventEnd, types[4])
}
