// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package websocket

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryUpgrade(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, ok := TryUpgrade(w, r, r.URL.Path)
		if !ok {
			return
		}
		defer conn.Close()

		var buf [16]byte
		n, err := io.ReadFull(conn, buf[:6])
		if err != nil {
			got <- err.Error()
			return
		}
		got <- conn.Path() + ":" + conn.Subprotocol() + ":" + string(buf[:n])

		conn.Write([]byte{1, 2})
		conn.TextTransport().Write([]byte("end"))
	}))
	defer srv.Close()

	dialer := websocket.Dialer{Subprotocols: []string{SubprotocolRTP}}
	ws, _, err := dialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/ingest", nil)
	require.NoError(t, err)
	defer ws.Close()

	// 两条消息在读取端连成字节流
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte("abc")))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("def")))
	assert.Equal(t, "/ws/ingest:rtp:abcdef", <-got)

	mt, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)
	assert.Equal(t, []byte{1, 2}, data)

	mt, data, err = ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	assert.Equal(t, "end", string(data))
}

func TestTryUpgrade_NotWebsocket(t *testing.T) {
	_, ok := TryUpgrade(nil, nil, "")
	assert.False(t, ok)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/events", nil)
	_, ok = TryUpgrade(rec, req, "/ws/events")
	assert.False(t, ok)
}
