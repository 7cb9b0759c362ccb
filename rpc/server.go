// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// longPollTimeout bounds how long an empty-Requests envelope blocks
// waiting for a new event before the HTTP handler returns anyway.
const longPollTimeout = 30 * time.Second

// sessionSweepInterval is how often idle sessions are garbage collected.
const sessionSweepInterval = time.Minute

// Config configures a Server.
type Config struct {
	// Addr is the TCP address the HTTP listener binds, e.g. ":8334".
	Addr string

	// Actions maps an action name to the function that serves it. Callers
	// register only the actions their deployment actually supports;
	// anything else replies with an "unknown action" error.
	Actions map[string]ActionFunc
}

// Server is the long-polling JSON RPC endpoint.
type Server struct {
	cfg      Config
	sessions *sessionRegistry
	http     *http.Server
	done     chan struct{}
}

// NewServer returns a Server ready to ListenAndServe.
func NewServer(cfg Config) *Server {
	if cfg.Actions == nil {
		cfg.Actions = make(map[string]ActionFunc)
	}
	s := &Server{cfg: cfg, sessions: newSessionRegistry(), done: make(chan struct{})}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleEnvelope)
	mux.HandleFunc("/ws", s.handleWebsocket)
	s.http = &http.Server{Addr: cfg.Addr, Handler: mux}

	return s
}

// ListenAndServe starts the HTTP listener and the idle-session sweeper. It
// blocks until Shutdown is called or the listener fails.
func (s *Server) ListenAndServe() error {
	go s.sweepLoop()
	log.Infof("RPC server listening on %s", s.cfg.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP listener and the sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	return s.http.Shutdown(ctx)
}

func (s *Server) sweepLoop() {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sessions.sweep()
		case <-s.done:
			return
		}
	}
}

// handleEnvelope implements the {sid, requests, _} shell: a missing or
// unrecognized sid starts a fresh session; an empty Requests slice is a
// long-poll wait instead of an action dispatch, on a freshly started
// session as well as on an existing one.
func (s *Server) handleEnvelope(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var env Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		s.writeJSON(w, []Response{{Error: "expected JSON-serialized object"}})
		return
	}

	sess := s.sessions.getOrCreate(env.Sid)
	sess.touch()
	sess.confirm(env.Ack)

	if len(env.Requests) == 0 {
		events := sess.wait(longPollTimeout)
		s.writeJSON(w, []Response{{Sid: sess.sid, Result: events}})
		return
	}

	responses := make([]Response, 0, len(env.Requests))
	for _, req := range env.Requests {
		if cached, ok := sess.cachedResponse(req.ID); ok {
			responses = append(responses, cached)
			continue
		}
		resp := s.dispatch(req)
		sess.cacheResponse(resp)
		responses = append(responses, resp)
	}
	if len(responses) > 0 {
		responses[0].Sid = sess.sid
	}
	s.writeJSON(w, responses)
}

func (s *Server) dispatch(req Request) Response {
	action, ok := s.cfg.Actions[req.Action]
	if !ok {
		return Response{ID: req.ID, Error: "unknown action: " + req.Action}
	}
	result, err := action(req.Params)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("RPC: failed to write response: %v", err)
	}
}
