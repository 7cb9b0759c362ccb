// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc implements the JSON long-polling RPC surface: a single HTTP
// endpoint accepting {sid, requests:[...]} envelopes and replying with a
// JSON array of per-request results. The package ships no actions of its
// own; the dispatch table holds only the handlers passed in Config.Actions.
package rpc

import "encoding/json"

// Ack carries the client's acknowledgement of previously delivered events
// and responses, piggy-backed on the next envelope under the "_" key.
type Ack struct {
	ConfirmedEvent    uint64 `json:"ce,omitempty"`
	ConfirmedResponse uint64 `json:"cr,omitempty"`
}

// Envelope is the single request body shape the RPC endpoint accepts.
// Sid is empty on the first call of a session; the server mints one and
// returns it via Response.Sid. An empty Requests slice is a long-poll,
// whether or not Sid is set: the call blocks for new events instead of
// executing an action.
type Envelope struct {
	Sid      string    `json:"sid,omitempty"`
	Requests []Request `json:"requests"`
	Ack      *Ack      `json:"_,omitempty"`
}

// Request is one action invocation within an Envelope.
type Request struct {
	ID     uint64          `json:"id"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the result of one Request, or a session-level error when ID
// is zero.
type Response struct {
	Sid    string      `json:"sid,omitempty"`
	ID     uint64      `json:"id,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Event is a server-initiated notification pushed to a session out of
// band, either over the long-poll response or the websocket transport.
type Event struct {
	Seq     uint64      `json:"seq"`
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload,omitempty"`
}

// ActionFunc handles one registered action name. Returning an error turns
// into Response.Error in the reply; the result is marshaled as-is.
type ActionFunc func(params json.RawMessage) (interface{}, error)
