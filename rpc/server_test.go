// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleEnvelopeUnknownAction(t *testing.T) {
	srv := NewServer(Config{})

	body, _ := json.Marshal(Envelope{Requests: []Request{{ID: 1, Action: "getinfo"}}})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.handleEnvelope(rec, req)

	var responses []Response
	if err := json.NewDecoder(rec.Body).Decode(&responses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("len(responses) = %d, want 1", len(responses))
	}
	if responses[0].Sid == "" {
		t.Error("expected a minted sid in the first response")
	}
	if responses[0].Error == "" {
		t.Error("expected an error for an unregistered action")
	}
}

func TestHandleEnvelopeRegisteredAction(t *testing.T) {
	srv := NewServer(Config{Actions: map[string]ActionFunc{
		"ping": func(json.RawMessage) (interface{}, error) { return "pong", nil },
	}})

	body, _ := json.Marshal(Envelope{Requests: []Request{{ID: 7, Action: "ping"}}})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.handleEnvelope(rec, req)

	var responses []Response
	if err := json.NewDecoder(rec.Body).Decode(&responses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(responses) != 1 || responses[0].ID != 7 || responses[0].Result != "pong" {
		t.Fatalf("responses = %+v, want one {id:7, result:pong}", responses)
	}
}

func TestHandleEnvelopeCachesResponseForRetry(t *testing.T) {
	calls := 0
	srv := NewServer(Config{Actions: map[string]ActionFunc{
		"count": func(json.RawMessage) (interface{}, error) { calls++; return calls, nil },
	}})

	body, _ := json.Marshal(Envelope{Requests: []Request{{ID: 3, Action: "count"}}})

	var first []Response
	rec := httptest.NewRecorder()
	srv.handleEnvelope(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	json.NewDecoder(rec.Body).Decode(&first)
	sid := first[0].Sid

	retryBody, _ := json.Marshal(Envelope{Sid: sid, Requests: []Request{{ID: 3, Action: "count"}}})
	var second []Response
	rec2 := httptest.NewRecorder()
	srv.handleEnvelope(rec2, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(retryBody)))
	json.NewDecoder(rec2.Body).Decode(&second)

	if calls != 1 {
		t.Fatalf("action invoked %d times, want 1 (second call should hit the cache)", calls)
	}
	if second[0].Result.(float64) != 1 {
		t.Fatalf("second response = %+v, want cached result 1", second[0])
	}
}

func TestSessionPushEventWakesWaiter(t *testing.T) {
	sess := newSession("test-sid")
	done := make(chan []Event, 1)
	go func() { done <- sess.wait(longPollTimeout) }()

	sess.pushEvent("block", map[string]int{"height": 10})

	events := <-done
	if len(events) != 1 || events[0].Kind != "block" {
		t.Fatalf("events = %+v, want one block event", events)
	}
}

func TestSessionConfirmPrunesAcked(t *testing.T) {
	sess := newSession("test-sid")
	sess.pushEvent("a", nil)
	sess.pushEvent("b", nil)
	sess.cacheResponse(Response{ID: 1})
	sess.cacheResponse(Response{ID: 2})

	sess.confirm(&Ack{ConfirmedEvent: 1, ConfirmedResponse: 1})

	if len(sess.pendingEvents) != 1 || sess.pendingEvents[0].Kind != "b" {
		t.Fatalf("pendingEvents = %+v, want only event b left", sess.pendingEvents)
	}
	if _, ok := sess.cachedResponse(1); ok {
		t.Error("expected response 1 to be pruned after confirm")
	}
	if _, ok := sess.cachedResponse(2); !ok {
		t.Error("expected response 2 to survive confirm")
	}
}
