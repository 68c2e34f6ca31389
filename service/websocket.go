// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"net/http"
	"strings"

	"github.com/cnotch/avs2probe/network/websocket"
	"github.com/cnotch/avs2probe/probe"
)

const (
	wsEventsPrefix = "/ws/events/"
	wsIngestPath   = "/ws/ingest"
)

func (s *Service) initWebsocket(mux *http.ServeMux) {
	mux.HandleFunc("/ws/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.ToLower(r.URL.Path)
		switch {
		case strings.HasPrefix(path, wsEventsPrefix):
			s.onEvents(w, r, r.URL.Path[len(wsEventsPrefix):])
		case path == wsIngestPath:
			s.onWebsocketIngest(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// onEvents 通过 websocket 推送会话事件，每个事件一条文本消息
func (s *Service) onEvents(w http.ResponseWriter, r *http.Request, token string) {
	p := probe.Get(token)
	if p == nil {
		http.NotFound(w, r)
		return
	}

	conn, ok := websocket.TryUpgrade(w, r, r.URL.Path)
	if !ok {
		return
	}

	sid := p.Subscribe(&eventSender{conn: conn.TextTransport()})
	// 读取并丢弃客户端消息，连接断开时取消订阅
	var buf [512]byte
	for {
		if _, err := conn.Read(buf[:]); err != nil {
			break
		}
	}
	p.Unsubscribe(sid)
}

// onWebsocketIngest 通过 websocket 接收 `$` 交织格式的 rtp 包
func (s *Service) onWebsocketIngest(w http.ResponseWriter, r *http.Request) {
	conn, ok := websocket.TryUpgrade(w, r, r.URL.Path)
	if !ok {
		return
	}
	if conn.Subprotocol() != websocket.SubprotocolRTP {
		s.logger.Warnf("websocket ingest from %s: unexpected subprotocol %q", r.RemoteAddr, conn.Subprotocol())
		conn.Close()
		return
	}

	s.ingestConn(conn, "ws://"+r.RemoteAddr)
}

// eventSender 把事件编码成 JSON 写到 websocket
type eventSender struct {
	conn websocket.Conn
}

func (es *eventSender) OnEvent(e *probe.Event) error {
	return jsonTo(es.conn, e)
}

func (es *eventSender) Close() error {
	return es.conn.Close()
}
