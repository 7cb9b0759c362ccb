// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"net"
	"testing"
	"time"

	"github.com/tkeycoin/tkeyd/addrmgr"
	"github.com/tkeycoin/tkeyd/blockchain"
	"github.com/tkeycoin/tkeyd/chaincfg"
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

func testHash(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func newTestPeer(t *testing.T) (*Peer, net.Conn) {
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

	local, remote := net.Pipe()
	t.Cleanup(func() { local.Close(); remote.Close() })

	cfg := &Config{Chain: chain, Addrs: addrs, Net: wire.SimNet, UserAgent: wire.DefaultUserAgent}
	p := NewPeer(local, cfg, NewManager())
	return p, remote
}

func TestManagerAddByIDRemove(t *testing.T) {
	p, _ := newTestPeer(t)
	m := p.manager
	m.Add(p)

	if got, ok := m.ByID(p.ID()); !ok || got != p {
		t.Fatalf("ByID(%d) = %v, %v; want %v, true", p.ID(), got, ok, p)
	}
	if m.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", m.Count())
	}

	m.remove(p.ID())
	if _, ok := m.ByID(p.ID()); ok {
		t.Fatal("expected peer to be removed from id index")
	}
	if m.Count() != 0 {
		t.Fatalf("Count() after remove = %d, want 0", m.Count())
	}
}

func TestReceiveAddressThenSendAddress(t *testing.T) {
	p, remote := newTestPeer(t)

	now := time.Now()
	p.ReceiveAddress([]*wire.NetAddress{
		{Timestamp: now, Services: wire.SFNodeNetwork, IP: net.ParseIP("1.2.3.4"), Port: 9666},
	})
	if p.cfg.Addrs.RegisteredCount() != 1 {
		t.Fatalf("RegisteredCount = %d, want 1", p.cfg.Addrs.RegisteredCount())
	}

	done := make(chan error, 1)
	go func() { done <- p.SendAddress() }()

	_, msg, err := wire.ReadMessage(remote, wire.ProtocolVersion, wire.SimNet)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("SendAddress: %v", err)
	}

	addr, ok := msg.(*wire.MsgAddr)
	if !ok {
		t.Fatalf("got %T, want *wire.MsgAddr", msg)
	}
	if len(addr.AddrList) != 1 || addr.AddrList[0].IP.String() != "1.2.3.4" {
		t.Fatalf("AddrList = %+v, want one entry for 1.2.3.4", addr.AddrList)
	}
}

func TestReceiveHeadersAddsAndAsksInventory(t *testing.T) {
	p, remote := newTestPeer(t)

	genesis := p.cfg.Chain.GenesisHash()
	header := &wire.BlockHeader{
		Version:    1,
		PrevBlock:  genesis,
		MerkleRoot: testHash(0xaa),
		Timestamp:  time.Now(),
		Bits:       0x207fffff,
		Height:     -1,
	}

	done := make(chan error, 1)
	go func() { done <- p.ReceiveHeaders([]*wire.BlockHeader{header}) }()

	_, msg, err := wire.ReadMessage(remote, wire.ProtocolVersion, wire.SimNet)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("ReceiveHeaders: %v", err)
	}

	getData, ok := msg.(*wire.MsgGetData)
	if !ok {
		t.Fatalf("got %T, want *wire.MsgGetData", msg)
	}
	if len(getData.InvList) != 1 || getData.InvList[0].Type != wire.InvTypeBlock {
		t.Fatalf("InvList = %+v, want one block entry", getData.InvList)
	}
	wantHash := header.BlockHash()
	if getData.InvList[0].Hash != wantHash {
		t.Fatalf("InvList[0].Hash = %v, want %v", getData.InvList[0].Hash, wantHash)
	}
	if !p.cfg.Chain.HasHeader(&wantHash) {
		t.Fatal("expected header to be stored in the chain")
	}
}

func TestSendInventoryBatchesOnTimer(t *testing.T) {
	p, remote := newTestPeer(t)

	hash := testHash(0x01)
	p.SendInventory(wire.NewInvVect(wire.InvTypeTx, &hash))

	// Flush synchronously instead of waiting out inventoryAnnounceDelay's
	// real five seconds; flushInventory is exactly what the timer would
	// have called.
	done := make(chan struct{})
	go func() { p.flushInventory(); close(done) }()

	_, msg, err := wire.ReadMessage(remote, wire.ProtocolVersion, wire.SimNet)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	<-done
	inv, ok := msg.(*wire.MsgInv)
	if !ok {
		t.Fatalf("got %T, want *wire.MsgInv", msg)
	}
	if len(inv.InvList) != 1 || inv.InvList[0].Hash != hash {
		t.Fatalf("InvList = %+v, want one entry for %v", inv.InvList, hash)
	}
}

func TestTouchArmsAndCloseStopsUnloadTimer(t *testing.T) {
	p, _ := newTestPeer(t)
	p.Touch(true)
	p.mu.Lock()
	armed := p.unloadTimer != nil
	p.mu.Unlock()
	if !armed {
		t.Fatal("expected Touch to arm the unload timer")
	}

	p.Close("test done")
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if !closed {
		t.Fatal("expected Close to mark the peer closed")
	}
}
