// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// sessionIdleTimeout is how long a session survives with no request and no
// active long-poll before it is dropped from the registry.
const sessionIdleTimeout = 10 * time.Minute

// session tracks one client's long-poll state: the events and responses it
// has been sent but not yet acknowledged, and (while a long-poll request is
// outstanding) the channel that wakes it when a new event arrives.
type session struct {
	sid string

	mu              sync.Mutex
	lastSeen        time.Time
	nextEventSeq    uint64
	confirmedEvent  uint64
	confirmedResp   uint64
	pendingEvents   []Event
	pendingResponse map[uint64]Response
	waiter          chan struct{}
}

func newSession(sid string) *session {
	return &session{sid: sid, lastSeen: time.Now(), pendingResponse: make(map[uint64]Response)}
}

// touch refreshes the session's idle deadline.
func (s *session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// cacheResponse remembers resp under req.ID so a retried request (the
// client never saw the first reply) gets the same answer instead of
// re-running the action.
func (s *session) cacheResponse(resp Response) {
	s.mu.Lock()
	s.pendingResponse[resp.ID] = resp
	s.mu.Unlock()
}

// cachedResponse returns a previously cached response for id, if any.
func (s *session) cachedResponse(id uint64) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.pendingResponse[id]
	return resp, ok
}

// pushEvent queues an out-of-band notification and wakes any outstanding
// long-poll waiting on it.
func (s *session) pushEvent(kind string, payload interface{}) {
	s.mu.Lock()
	s.nextEventSeq++
	s.pendingEvents = append(s.pendingEvents, Event{Seq: s.nextEventSeq, Kind: kind, Payload: payload})
	waiter := s.waiter
	s.waiter = nil
	s.mu.Unlock()

	if waiter != nil {
		close(waiter)
	}
}

// confirm drops events and cached responses the client has acknowledged.
func (s *session) confirm(ack *Ack) {
	if ack == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if ack.ConfirmedEvent > s.confirmedEvent {
		s.confirmedEvent = ack.ConfirmedEvent
		kept := s.pendingEvents[:0]
		for _, ev := range s.pendingEvents {
			if ev.Seq > s.confirmedEvent {
				kept = append(kept, ev)
			}
		}
		s.pendingEvents = kept
	}
	if ack.ConfirmedResponse > s.confirmedResp {
		s.confirmedResp = ack.ConfirmedResponse
		for id := range s.pendingResponse {
			if id <= s.confirmedResp {
				delete(s.pendingResponse, id)
			}
		}
	}
}

// wait blocks until an event is pending or timeout elapses, then returns
// every queued event.
func (s *session) wait(timeout time.Duration) []Event {
	s.mu.Lock()
	if len(s.pendingEvents) > 0 {
		events := append([]Event(nil), s.pendingEvents...)
		s.mu.Unlock()
		return events
	}
	waiter := make(chan struct{})
	s.waiter = waiter
	s.mu.Unlock()

	select {
	case <-waiter:
	case <-time.After(timeout):
	}

	s.mu.Lock()
	events := append([]Event(nil), s.pendingEvents...)
	s.mu.Unlock()
	return events
}

// sessionRegistry is the "model::client::Session" store this shell keeps:
// every session is addressed by a randomly generated sid handed back to
// the client on its first request.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*session)}
}

// getOrCreate returns the session for sid, creating one (under a freshly
// minted sid, held in the session's sid field) if sid is empty or unknown — an unknown sid is
// treated as an expired session starting over rather than an error.
func (r *sessionRegistry) getOrCreate(sid string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sid != "" {
		if s, ok := r.sessions[sid]; ok {
			return s
		}
	}
	sid = newSessionID()
	s := newSession(sid)
	r.sessions[sid] = s
	return s
}

// sweep drops sessions idle for longer than sessionIdleTimeout.
func (r *sessionRegistry) sweep() {
	cutoff := time.Now().Add(-sessionIdleTimeout)
	r.mu.Lock()
	defer r.mu.Unlock()
	for sid, s := range r.sessions {
		s.mu.Lock()
		stale := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(r.sessions, sid)
		}
	}
}

func newSessionID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("rpc: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf[:])
}
