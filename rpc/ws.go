// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsPingInterval keeps the connection's idle timeout from firing on a
// client that has no events to receive for a while.
const wsPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebsocket is an alternative transport for the same session event
// stream handleEnvelope's long-poll wait serves: ?sid=<id> attaches to an
// existing session and streams its events as they're pushed, instead of
// the client re-polling with an empty Requests envelope.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("sid")
	if sid == "" {
		http.Error(w, "missing sid", http.StatusBadRequest)
		return
	}
	sess := s.sessions.getOrCreate(sid)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("RPC: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		events := sess.wait(wsPingInterval)
		if len(events) > 0 {
			if err := conn.WriteJSON(events); err != nil {
				log.Debugf("RPC: websocket write failed: %v", err)
				return
			}
			continue
		}
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			log.Debugf("RPC: websocket ping failed: %v", err)
			return
		}
	}
}
