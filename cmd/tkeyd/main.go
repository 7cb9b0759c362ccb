// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command tkeyd is the TKEY full node daemon: it loads configuration,
// opens the header/transaction store and the address manager, then brings
// up the peer-to-peer listener and the RPC transport the way
// Node::up()/Node::down() bring up and tear down the "protocol" and "rpc"
// transports in the reference implementation.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/tkeycoin/tkeyd/addrmgr"
	"github.com/tkeycoin/tkeyd/blockchain"
	"github.com/tkeycoin/tkeyd/blockchain/indexers"
	"github.com/tkeycoin/tkeyd/chaincfg"
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/internal/config"
	"github.com/tkeycoin/tkeyd/node"
	"github.com/tkeycoin/tkeyd/rpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if cfg.Logs != "" {
		if err := initLogRotator(filepath.Join(cfg.Logs, "tkeyd.log")); err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer closeLogRotator()
	}

	if cfg.Core.TimeZone != "" {
		os.Setenv("TZ", cfg.Core.TimeZone)
	}

	workers, err := cfg.Core.ResolvedWorkers()
	if err != nil {
		return err
	}
	pool := newWorkerPool(workers)
	defer pool.Stop()

	params := chaincfg.MainNetParams()
	if cfg.Blockchain.Genesis != "" {
		if err := checkGenesisOverride(params, cfg.Blockchain.Genesis); err != nil {
			return err
		}
	}

	dataDir := ""
	var addrIndex *indexers.AddrIndex
	if cfg.Blockchain.Mempool != "" {
		dataDir = filepath.Dir(cfg.Blockchain.Mempool)

		addrIndex, err = indexers.NewAddrIndex(filepath.Join(dataDir, "addrindex"))
		if err != nil {
			return fmt.Errorf("opening address index: %w", err)
		}
		defer addrIndex.Close()
	}

	chainCfg := &blockchain.Config{
		ChainParams: params,
		Scheduler:   pool,
		DataDir:     dataDir,
	}
	if addrIndex != nil {
		chainCfg.AddrIndex = addrIndex
	}
	chain, err := blockchain.New(chainCfg)
	if err != nil {
		return fmt.Errorf("opening blockchain store: %w", err)
	}
	defer chain.Close()

	addrs, err := addrmgr.New(&addrmgr.Config{
		Path:            cfg.Addresses.Path,
		StorageTime:     time.Duration(cfg.Addresses.StorageTime) * time.Second,
		AddressCapacity: cfg.Addresses.AddressCapacity,
		BannedCapacity:  cfg.Addresses.BannedCapacity,
	})
	if err != nil {
		return fmt.Errorf("opening address manager: %w", err)
	}
	defer addrs.Close()

	srv := node.New(node.Config{
		Chain:      chain,
		Addrs:      addrs,
		Net:        params.Net,
		UserAgent:  defaultUserAgent,
		ListenAddr: transportAddr(cfg, "protocol"),
		SeedAddrs:  seedAddrs(cfg),
	})
	if err := srv.Up(); err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	defer srv.Down()

	var rpcServer *rpc.Server
	if addr := transportAddr(cfg, "rpc"); addr != "" {
		rpcServer = rpc.NewServer(rpc.Config{
			Addr:    addr,
			Actions: rpcActions(srv, chain, params, addrIndex),
		})
		go func() {
			if err := rpcServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logMain.Errorf("rpc server: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			rpcServer.Shutdown(ctx)
		}()
	}

	logMain.Info("tkeyd started")
	waitForShutdown()
	logMain.Info("tkeyd shutting down")
	return nil
}

// defaultUserAgent is advertised in this node's version message.
const defaultUserAgent = "/tkeyd:1.0.0/"

// transportAddr resolves the host:port for a named [transports.<name>]
// section, or "" if that transport isn't configured.
func transportAddr(cfg *config.Config, name string) string {
	t, ok := cfg.Transports[name]
	if !ok || t.Host == "" && t.Port == 0 {
		return ""
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

// seedAddrs returns the address of every configured transport whose type
// is "seed", skipping "protocol" and "rpc", letting an operator list known peers
// under their own [transports.<name>] entries the same config file
// already carries listener definitions in.
func seedAddrs(cfg *config.Config) []string {
	var addrs []string
	for name, t := range cfg.Transports {
		if name == "protocol" || name == "rpc" || t.Type != "seed" {
			continue
		}
		addrs = append(addrs, net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port))))
	}
	return addrs
}

// checkGenesisOverride verifies the configured genesis hash matches the
// selected network's compiled-in genesis, rather than silently running
// against a mismatched chain.
func checkGenesisOverride(params *chaincfg.Params, hexHash string) error {
	want, err := hex.DecodeString(hexHash)
	if err != nil {
		return fmt.Errorf("blockchain.genesis: %w", err)
	}
	if len(want) != chainhash.HashSize {
		return fmt.Errorf("blockchain.genesis: want %d bytes, got %d", chainhash.HashSize, len(want))
	}
	var got chainhash.Hash
	copy(got[:], want)
	if got != params.GenesisHash {
		return fmt.Errorf("blockchain.genesis %s does not match network genesis %s", got, params.GenesisHash)
	}
	return nil
}

// waitForShutdown blocks until SIGINT or SIGTERM arrives.
func waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
