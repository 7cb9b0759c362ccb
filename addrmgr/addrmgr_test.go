// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net"
	"testing"
	"time"

	"github.com/tkeycoin/tkeyd/wire"
)

func testAddr(ip string, port uint16, ts time.Time) *wire.NetAddress {
	return &wire.NetAddress{
		Timestamp: ts,
		Services:  wire.SFNodeNetwork,
		IP:        net.ParseIP(ip),
		Port:      port,
	}
}

func newTestManager(t *testing.T) *AddrManager {
	t.Helper()
	am, err := New(&Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { am.Close() })
	return am
}

func TestRegInsertsAndBumps(t *testing.T) {
	am := newTestManager(t)

	now := time.Now()
	addr := testAddr("1.2.3.4", 9666, now)
	am.Reg(addr)

	if am.RegisteredCount() != 1 {
		t.Fatalf("RegisteredCount = %d, want 1", am.RegisteredCount())
	}

	newer := testAddr("1.2.3.4", 9666, now.Add(time.Hour))
	am.Reg(newer)
	if am.RegisteredCount() != 1 {
		t.Fatalf("RegisteredCount after bump = %d, want 1", am.RegisteredCount())
	}

	got := am.Get(1)
	if len(got) != 1 || !got[0].Timestamp.Equal(newer.Timestamp) {
		t.Fatalf("Get(1) = %+v, want timestamp bumped to %v", got, newer.Timestamp)
	}
}

func TestBanRemovesFromKnownAndFailed(t *testing.T) {
	am := newTestManager(t)

	addr := testAddr("5.6.7.8", 9666, time.Now())
	am.Reg(addr)
	am.Ban(addr)

	if am.RegisteredCount() != 0 {
		t.Fatalf("RegisteredCount after ban = %d, want 0", am.RegisteredCount())
	}
	if !am.IsBanned(addr) {
		t.Fatal("expected address to be banned")
	}

	// Registering a banned address must have no effect.
	am.Reg(addr)
	if am.RegisteredCount() != 0 {
		t.Fatalf("RegisteredCount after reg of banned addr = %d, want 0", am.RegisteredCount())
	}

	// Banning an address that sits in failed removes it from there too.
	failedAddr := testAddr("5.6.7.9", 9666, time.Now())
	am.Reg(failedAddr)
	am.Fail(failedAddr)
	am.Ban(failedAddr)
	if _, ok := am.failed[key(failedAddr)]; ok {
		t.Fatal("expected Ban to remove the address from failed")
	}
}

func TestFailMovesOutOfKnown(t *testing.T) {
	am := newTestManager(t)

	addr := testAddr("9.9.9.9", 9666, time.Now())
	am.Reg(addr)
	am.Fail(addr)

	if am.RegisteredCount() != 0 {
		t.Fatalf("RegisteredCount after fail = %d, want 0", am.RegisteredCount())
	}

	// A fresh, newer sighting should pull the address back out of failed.
	am.Reg(testAddr("9.9.9.9", 9666, time.Now().Add(time.Hour)))
	if am.RegisteredCount() != 1 {
		t.Fatalf("RegisteredCount after re-reg = %d, want 1", am.RegisteredCount())
	}
}

func TestGetReturnsMostRecentFirst(t *testing.T) {
	am := newTestManager(t)

	base := time.Now()
	am.Reg(testAddr("10.0.0.1", 9666, base))
	am.Reg(testAddr("10.0.0.2", 9666, base.Add(time.Minute)))
	am.Reg(testAddr("10.0.0.3", 9666, base.Add(2*time.Minute)))

	got := am.Get(10)
	if len(got) != 3 {
		t.Fatalf("Get(10) returned %d entries, want 3", len(got))
	}
	if got[0].IP.String() != "10.0.0.3" {
		t.Fatalf("Get(10)[0] = %s, want 10.0.0.3 (most recent)", got[0].IP)
	}
	if got[2].IP.String() != "10.0.0.1" {
		t.Fatalf("Get(10)[2] = %s, want 10.0.0.1 (oldest)", got[2].IP)
	}
}

func TestTruncateDropsStaleEntries(t *testing.T) {
	am, err := New(&Config{StorageTime: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer am.Close()

	am.Reg(testAddr("172.16.0.1", 9666, time.Now().Add(-2*time.Hour)))
	am.Reg(testAddr("172.16.0.2", 9666, time.Now()))

	if !am.truncate() {
		t.Fatal("expected truncate to report a change")
	}
	if am.RegisteredCount() != 1 {
		t.Fatalf("RegisteredCount after truncate = %d, want 1", am.RegisteredCount())
	}
}
