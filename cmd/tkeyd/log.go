// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/tkeycoin/tkeyd/addrmgr"
	"github.com/tkeycoin/tkeyd/blockchain"
	"github.com/tkeycoin/tkeyd/node"
	"github.com/tkeycoin/tkeyd/peer"
	"github.com/tkeycoin/tkeyd/rpc"
	"github.com/tkeycoin/tkeyd/txscript"
	"github.com/tkeycoin/tkeyd/wire"
)

// logRotatorMaxRolls is how many rotated log files are kept alongside the
// active one.
const logRotatorMaxRolls = 10

// logWriter couples stdout with a file rotator so every line written to
// the backend reaches both.
type logWriter struct {
	file *rotator.Rotator
}

func (w logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	return w.file.Write(p)
}

var (
	backendLog *slog.Backend
	logRotator *rotator.Rotator

	logMain       = slog.Disabled
	logChain      = slog.Disabled
	logAddrMgr    = slog.Disabled
	logPeer       = slog.Disabled
	logNode       = slog.Disabled
	logRPC        = slog.Disabled
	logTxScript   = slog.Disabled
	logWireModule = slog.Disabled
)

// initLogRotator opens (creating if necessary) the rotating log file at
// logPath and wires backendLog and every subsystem logger to it: one
// rotator shared by every subsystem's own tagged Logger.
func initLogRotator(logPath string) error {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("create log directory %s: %w", logDir, err)
	}

	r, err := rotator.New(logPath, 10*1024, false, logRotatorMaxRolls)
	if err != nil {
		return fmt.Errorf("create log rotator: %w", err)
	}
	logRotator = r

	backendLog = slog.NewBackend(logWriter{file: r})
	initSubsystemLoggers()
	return nil
}

// initSubsystemLoggers binds every package's UseLogger to a distinct
// subsystem tag on the shared backend, the way exccd's log.go wires one
// Logger per package.
func initSubsystemLoggers() {
	logMain = backendLog.Logger("TKYD")
	logChain = backendLog.Logger("CHNS")
	logAddrMgr = backendLog.Logger("ADMR")
	logPeer = backendLog.Logger("PEER")
	logNode = backendLog.Logger("NODE")
	logRPC = backendLog.Logger("RRPC")
	logTxScript = backendLog.Logger("SCRT")
	logWireModule = backendLog.Logger("WIRE")

	blockchain.UseLogger(logChain)
	addrmgr.UseLogger(logAddrMgr)
	peer.UseLogger(logPeer)
	node.UseLogger(logNode)
	rpc.UseLogger(logRPC)
	txscript.UseLogger(logTxScript)
	wire.UseLogger(logWireModule)
}

// setLogLevels applies the same level string to every subsystem logger.
func setLogLevels(levelStr string) error {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelStr)
	}
	for _, l := range []slog.Logger{
		logMain, logChain, logAddrMgr, logPeer, logNode, logRPC, logTxScript, logWireModule,
	} {
		l.SetLevel(level)
	}
	return nil
}

// closeLogRotator flushes and releases the rotator's open file handle.
func closeLogRotator() {
	if logRotator != nil {
		logRotator.Close()
	}
}

var _ io.Writer = logWriter{}
