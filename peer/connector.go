// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tkeycoin/tkeyd/wire"
)

// State is one step of the outbound connector's handshake state machine:
// Init -> Connect -> Connected -> Submit -> Submited -> Established, with
// Error reachable from any of the in-flight states. Every transition
// method checks the state it expects to be leaving and refuses (rather
// than silently clobbering) anything already moved on or already failed.
type State int

const (
	StateInit State = iota
	StateConnect
	StateConnected
	StateSubmit
	StateSubmited
	StateEstablished
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConnect:
		return "connect"
	case StateConnected:
		return "connected"
	case StateSubmit:
		return "submit"
	case StateSubmited:
		return "submited"
	case StateEstablished:
		return "established"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// connectTimeout bounds the TCP dial itself.
const connectTimeout = 15 * time.Second

// handshakeTimeout bounds the wait for the remote's version/verack
// exchange once our version message is on the wire.
const handshakeTimeout = 999 * time.Second

var errBadStep = errors.New("peer: connector state transition rejected")

// Connector drives a single outbound connection from a bare address
// through to a registered, handshaken Peer.
type Connector struct {
	cfg     *Config
	manager *Manager

	mu    sync.Mutex
	state State
	err   error
}

// NewConnector returns a Connector that will hand off completed
// connections to manager and serve them using cfg.
func NewConnector(cfg *Config, manager *Manager) *Connector {
	return &Connector{cfg: cfg, manager: manager, state: StateInit}
}

// State returns the connector's current step.
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error that drove the connector into StateError, if any.
func (c *Connector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// transition moves the connector from `from` to `to`, refusing (and
// reporting false) if the connector is not currently in `from`, so a
// transition firing out of order or twice has no effect.
func (c *Connector) transition(from, to State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return false
	}
	c.state = to
	return true
}

func (c *Connector) fail(from State, err error) {
	c.mu.Lock()
	if c.state == from {
		c.state = StateError
	}
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

// Dial connects to addr, performs the version/verack handshake, registers
// the resulting Peer with the connector's Manager, and runs its initial
// post-handshake setup. The returned Peer is ready for its owner to start
// a generic read loop on.
func (c *Connector) Dial(ctx context.Context, addr string) (*Peer, error) {
	if !c.transition(StateInit, StateConnect) {
		return nil, errBadStep
	}

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		c.fail(StateConnect, err)
		return nil, err
	}

	if !c.transition(StateConnect, StateConnected) {
		conn.Close()
		return nil, errBadStep
	}

	p := NewPeer(conn, c.cfg, c.manager)

	if !c.transition(StateConnected, StateSubmit) {
		conn.Close()
		return nil, errBadStep
	}

	nonce := uint64(time.Now().UnixNano())
	version := buildVersionMessage(c.cfg, conn, nonce)
	if err := p.send(version); err != nil {
		c.fail(StateSubmit, err)
		conn.Close()
		return nil, err
	}

	if !c.transition(StateSubmit, StateSubmited) {
		conn.Close()
		return nil, errBadStep
	}

	if err := c.awaitHandshake(p); err != nil {
		c.fail(StateSubmited, err)
		conn.Close()
		return nil, err
	}

	if !c.transition(StateSubmited, StateEstablished) {
		conn.Close()
		return nil, errBadStep
	}

	c.manager.Add(p)
	if err := p.InitialSetup(); err != nil {
		p.Close(fmt.Sprintf("initial setup failed: %v", err))
		return nil, err
	}
	return p, nil
}

// awaitHandshake reads messages off p's connection until both a version
// and a verack have been seen, answering the remote's version with our
// own verack along the way.
func (c *Connector) awaitHandshake(p *Peer) error {
	deadline := time.Now().Add(handshakeTimeout)
	if err := p.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	defer p.conn.SetReadDeadline(time.Time{})

	var gotVersion, gotVerAck bool
	for !gotVersion || !gotVerAck {
		msg, err := p.Read()
		if err != nil {
			return err
		}
		switch m := msg.(type) {
		case *wire.MsgVersion:
			p.SetVersion(m.ProtocolVersion)
			if err := p.send(wire.NewMsgVerAck()); err != nil {
				return err
			}
			gotVersion = true
		case *wire.MsgVerAck:
			gotVerAck = true
		default:
			// Dropped: a well-behaved peer sends nothing but its version
			// and verack before the handshake completes.
		}
	}
	return nil
}

// buildVersionMessage constructs this node's version announcement for
// the connection on conn.
func buildVersionMessage(cfg *Config, conn net.Conn, nonce uint64) *wire.MsgVersion {
	now := time.Now()
	you := &wire.NetAddress{Timestamp: now, Services: wire.SFNodeNetwork}
	me := &wire.NetAddress{Timestamp: now, Services: cfg.Services}

	if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		you.IP = tcpAddr.IP
		you.Port = uint16(tcpAddr.Port)
	}
	if tcpAddr, ok := conn.LocalAddr().(*net.TCPAddr); ok {
		me.IP = tcpAddr.IP
		me.Port = uint16(tcpAddr.Port)
	}

	lastBlock := int32(-1)
	if cfg.Chain != nil {
		lastBlock = int32(cfg.Chain.TipHeight())
	}

	msg := wire.NewMsgVersion(me, you, nonce, lastBlock)
	if cfg.UserAgent != "" {
		msg.UserAgent = cfg.UserAgent
	}
	return msg
}
