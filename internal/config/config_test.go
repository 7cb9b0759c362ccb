// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tkeyd.conf")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadParsesSections(t *testing.T) {
	path := writeConfigFile(t, `
logs = /var/log/tkeyd

[core]
workers = 4
timeZone = UTC
processName = tkeyd

[blockchain]
mempool = /var/lib/tkeyd/blockchain.dat
genesis = 00000000000000000000000000000000000000000000000000000000000000

[addresses]
path = /var/lib/tkeyd/peers.dat
storageTime = 3600
addressCapacity = 5000
bannedCapacity = 500

[transports.clearnet]
type = tcp
host = 0.0.0.0
port = 9666
secure = false

[transports.tls]
type = tcp
host = 0.0.0.0
port = 9667
secure = true
`)

	cfg, err := Load([]string{"-C", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logs != "/var/log/tkeyd" {
		t.Errorf("Logs = %q, want /var/log/tkeyd", cfg.Logs)
	}
	if cfg.Core.Workers != "4" {
		t.Errorf("Core.Workers = %q, want 4", cfg.Core.Workers)
	}
	if cfg.Core.TimeZone != "UTC" {
		t.Errorf("Core.TimeZone = %q, want UTC", cfg.Core.TimeZone)
	}
	if cfg.Blockchain.Mempool != "/var/lib/tkeyd/blockchain.dat" {
		t.Errorf("Blockchain.Mempool = %q", cfg.Blockchain.Mempool)
	}
	if cfg.Addresses.AddressCapacity != 5000 {
		t.Errorf("Addresses.AddressCapacity = %d, want 5000", cfg.Addresses.AddressCapacity)
	}

	if len(cfg.Transports) != 2 {
		t.Fatalf("len(Transports) = %d, want 2", len(cfg.Transports))
	}
	clearnet, ok := cfg.Transports["clearnet"]
	if !ok {
		t.Fatal("missing clearnet transport")
	}
	if clearnet.Type != "tcp" || clearnet.Port != 9666 || clearnet.Secure {
		t.Errorf("clearnet = %+v, want type=tcp port=9666 secure=false", clearnet)
	}
	tls, ok := cfg.Transports["tls"]
	if !ok {
		t.Fatal("missing tls transport")
	}
	if !tls.Secure || tls.Port != 9667 {
		t.Errorf("tls = %+v, want port=9667 secure=true", tls)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.conf")

	cfg, err := Load([]string{"-C", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Core.Workers != "auto" {
		t.Errorf("Core.Workers = %q, want auto", cfg.Core.Workers)
	}
	if len(cfg.Transports) != 0 {
		t.Errorf("Transports = %+v, want empty", cfg.Transports)
	}
}

func TestResolvedWorkersAuto(t *testing.T) {
	c := CoreConfig{Workers: "auto"}
	n, err := c.ResolvedWorkers()
	if err != nil {
		t.Fatalf("ResolvedWorkers: %v", err)
	}
	if n < minWorkers {
		t.Errorf("ResolvedWorkers() = %d, want >= %d", n, minWorkers)
	}
}

func TestResolvedWorkersRejectsTooFew(t *testing.T) {
	c := CoreConfig{Workers: "1"}
	if _, err := c.ResolvedWorkers(); err == nil {
		t.Fatal("expected error for workers=1")
	}
}

func TestResolvedWorkersRejectsGarbage(t *testing.T) {
	c := CoreConfig{Workers: "not-a-number"}
	if _, err := c.ResolvedWorkers(); err == nil {
		t.Fatal("expected error for non-numeric workers")
	}
}
