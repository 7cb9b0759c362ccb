// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"net"
	"testing"
	"time"

	"github.com/tkeycoin/tkeyd/addrmgr"
	"github.com/tkeycoin/tkeyd/blockchain"
	"github.com/tkeycoin/tkeyd/chaincfg"
	"github.com/tkeycoin/tkeyd/wire"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	params := chaincfg.SimNetParams()
	chain, err := blockchain.New(&blockchain.Config{ChainParams: params})
	if err != nil {
		t.Fatalf("blockchain.New: %v", err)
	}
	t.Cleanup(func() { chain.Close() })

	addrs, err := addrmgr.New(&addrmgr.Config{})
	if err != nil {
		t.Fatalf("addrmgr.New: %v", err)
	}
	t.Cleanup(func() { addrs.Close() })

	srv := New(Config{
		Chain:      chain,
		Addrs:      addrs,
		Net:        wire.SimNet,
		UserAgent:  wire.DefaultUserAgent,
		ListenAddr: "127.0.0.1:0",
	})
	return srv
}

// dialAndHandshake opens a raw TCP connection to srv's listener and drives
// the initiating side of the version/verack exchange, returning the
// connection still open so the caller can observe InitialSetup's
// follow-up traffic.
func dialAndHandshake(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}

	now := time.Now()
	version := wire.NewMsgVersion(
		&wire.NetAddress{Timestamp: now, Services: wire.SFNodeNetwork},
		&wire.NetAddress{Timestamp: now, Services: wire.SFNodeNetwork},
		1, -1,
	)
	if err := wire.WriteMessage(conn, version, wire.ProtocolVersion, wire.SimNet); err != nil {
		t.Fatalf("write version: %v", err)
	}
	if err := wire.WriteMessage(conn, wire.NewMsgVerAck(), wire.ProtocolVersion, wire.SimNet); err != nil {
		t.Fatalf("write verack: %v", err)
	}

	var gotVersion, gotVerAck bool
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for !gotVersion || !gotVerAck {
		_, msg, err := wire.ReadMessage(conn, wire.ProtocolVersion, wire.SimNet)
		if err != nil {
			t.Fatalf("read handshake reply: %v", err)
		}
		switch msg.(type) {
		case *wire.MsgVersion:
			gotVersion = true
		case *wire.MsgVerAck:
			gotVerAck = true
		}
	}
	conn.SetReadDeadline(time.Time{})
	return conn
}

func TestServerAcceptsInboundPeer(t *testing.T) {
	srv := newTestServer(t)
	if err := srv.Up(); err != nil {
		t.Fatalf("Up: %v", err)
	}
	defer srv.Down()

	conn := dialAndHandshake(t, srv.listener.Addr().String())
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Manager().Count() == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Manager().Count() = %d, want 1", srv.Manager().Count())
}

func TestAnnounceWithNoPeersDoesNotPanic(t *testing.T) {
	srv := newTestServer(t)
	hash := srv.cfg.Chain.GenesisHash()
	srv.AnnounceTx(&hash)
	srv.AnnounceBlock(&hash)
}
