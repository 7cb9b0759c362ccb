// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/tkeycoin/tkeyd/chaincfg"
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// mineVersionedBlock is mineBlock with control over the header version, so
// a test can simulate version-bits signaling.
func mineVersionedBlock(prev chainhash.Hash, height int64, version int32) *wire.MsgBlock {
	blk := mineBlock(prev, height)
	blk.Header.Version = version
	blk.Header.MerkleRoot = CalcMerkleRoot(blk.Transactions)
	return blk
}

func TestDeploymentStateLocksInAndActivates(t *testing.T) {
	params := chaincfg.SimNetParams()
	params.MinerConfirmationWindow = 4
	params.RuleChangeActivationThreshold = 3
	deployment := &chaincfg.ConsensusDeployment{BitNumber: 0, StartTime: 0, ExpireTime: 0}

	b, err := New(&Config{ChainParams: params})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	genesis := params.GenesisBlock
	if err := b.AddBlock(genesis); err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}

	signalVersion := int32(vbTopBits | 1<<deployment.BitNumber)
	prev := genesis.BlockHash()
	// First window (heights 0-3): blocks 1-3 signal, 3 of 4, meeting the
	// activation threshold; block 4 opens the next window, in which the
	// deployment is locked in.
	for i := int64(1); i <= 4; i++ {
		version := signalVersion
		if i == 4 {
			version = 1 // non-signaling block opening the locked-in window
		}
		blk := mineVersionedBlock(prev, i, version)
		if err := b.AddBlock(blk); err != nil {
			t.Fatalf("AddBlock(height %d): %v", i, err)
		}
		prev = blk.BlockHash()
	}

	state := b.DeploymentState(params, deployment, time.Now())
	if state != ThresholdLockedIn {
		t.Fatalf("state after first window = %v, want %v", state, ThresholdLockedIn)
	}

	// Heights 5-8 finish the locked-in window (heights 4-7) and open the
	// next one at height 8, where the deployment is active regardless of
	// further signaling.
	for i := int64(5); i <= 8; i++ {
		blk := mineVersionedBlock(prev, i, 1)
		if err := b.AddBlock(blk); err != nil {
			t.Fatalf("AddBlock(height %d): %v", i, err)
		}
		prev = blk.BlockHash()
	}

	state = b.DeploymentState(params, deployment, time.Now())
	if state != ThresholdActive {
		t.Fatalf("state after second window = %v, want %v", state, ThresholdActive)
	}
}

func TestDeploymentStateBeforeStartTime(t *testing.T) {
	params := chaincfg.SimNetParams()
	deployment := &chaincfg.ConsensusDeployment{BitNumber: 1, StartTime: uint64(time.Now().Add(time.Hour).Unix())}

	b, err := New(&Config{ChainParams: params})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if err := b.AddBlock(params.GenesisBlock); err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}

	state := b.DeploymentState(params, deployment, time.Now())
	if state != ThresholdDefined {
		t.Fatalf("state before start time = %v, want %v", state, ThresholdDefined)
	}
}
