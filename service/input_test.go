// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/cnotch/avs2probe/av/codec"
	"github.com/cnotch/avs2probe/av/codec/avs2/avs2test"
	"github.com/cnotch/avs2probe/config"
	"github.com/cnotch/avs2probe/probe"
	"github.com/cnotch/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportDigest struct {
	Token  string `json:"token"`
	Status string `json:"status"`
	Video  struct {
		Codec     string `json:"codec"`
		Width     int    `json:"width"`
		ClockRate int    `json:"clockrate"`
	} `json:"video"`
	Decode struct {
		Frames  int64 `json:"frames"`
		Outputs int64 `json:"outputs"`
		Errors  int64 `json:"errors"`
	} `json:"decode"`
	SeqHeader struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"seqheader"`
}

func readReport(t *testing.T, path string) reportDigest {
	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	var r reportDigest
	require.NoError(t, json.Unmarshal(data, &r))
	return r
}

func TestRunOffline_ES(t *testing.T) {
	dir, err := ioutil.TempDir("", "avs2probe")
	require.NoError(t, err)

	seq := avs2test.Default()
	seq.GOP = 3
	esPath := filepath.Join(dir, "test.avs2")
	require.NoError(t, ioutil.WriteFile(esPath, seq.Stream(7), 0644))

	reportPath := filepath.Join(dir, "report.json")
	require.NoError(t, RunOffline(config.InputConfig{ES: esPath, Report: reportPath}, xlog.L()))

	r := readReport(t, reportPath)
	assert.Equal(t, "finished", r.Status)
	assert.Equal(t, int64(7), r.Decode.Frames)
	assert.Equal(t, int64(7), r.Decode.Outputs)
	assert.Zero(t, r.Decode.Errors)
	assert.Equal(t, 352, r.SeqHeader.Width)
	assert.Equal(t, 288, r.SeqHeader.Height)
}

func TestRunOffline_RTPDump(t *testing.T) {
	dir, err := ioutil.TempDir("", "avs2probe")
	require.NoError(t, err)

	seq := avs2test.Default()
	rtpPath := filepath.Join(dir, "test.rtp")
	sdpPath := filepath.Join(dir, "test.sdp")
	require.NoError(t, ioutil.WriteFile(rtpPath, rtpDump(t, seq, 5), 0644))
	require.NoError(t, ioutil.WriteFile(sdpPath, []byte(sdpOf(seq)), 0644))

	reportPath := filepath.Join(dir, "report.json")
	require.NoError(t, RunOffline(config.InputConfig{RTP: rtpPath, SDP: sdpPath, Report: reportPath}, xlog.L()))

	r := readReport(t, reportPath)
	assert.Equal(t, int64(5), r.Decode.Outputs)
	assert.Equal(t, "AVS2", r.Video.Codec)
	assert.Equal(t, 352, r.Video.Width)
	assert.Equal(t, 90000, r.Video.ClockRate)
}

func TestRunOffline_Errors(t *testing.T) {
	assert.Equal(t, ErrNoInput, RunOffline(config.InputConfig{}, xlog.L()))
	assert.Error(t, RunOffline(config.InputConfig{ES: "/nonexistent/test.avs2"}, xlog.L()))
	assert.Error(t, RunOffline(config.InputConfig{RTP: "test.rtp", SDP: "/nonexistent/test.sdp"}, xlog.L()))
}

func TestProbeRTPDump_BadSDP(t *testing.T) {
	p := probe.NewProbe("test:badsdp")
	defer p.Close()
	err := ProbeRTPDump(bytes.NewReader(nil), "v=0\r\n", p, false)
	assert.Error(t, err)
}

func TestPacer(t *testing.T) {
	var got []int64
	pc := &pacer{w: codec.FrameWriterFunc(func(frame *codec.Frame) error {
		got = append(got, frame.Dts)
		return nil
	})}

	start := time.Now()
	for _, dts := range []int64{int64(time.Second), int64(time.Second + 20*time.Millisecond)} {
		require.NoError(t, pc.WriteFrame(&codec.Frame{Dts: dts}))
	}
	assert.True(t, time.Since(start) >= 20*time.Millisecond)
	assert.Len(t, got, 2)
}
