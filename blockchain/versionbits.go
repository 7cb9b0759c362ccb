// Copyright (c) 2016-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/jrick/bitset"

	"github.com/tkeycoin/tkeyd/chaincfg"
)

// vbTopBits/vbTopMask identify a version-bits-encoded block version, the
// same top-three-bit marker the original reserves for signaling.
const (
	vbTopBits = 0x20000000
	vbTopMask = 0xe0000000
)

// ThresholdState is a point in a BIP9-style deployment's state machine.
type ThresholdState byte

const (
	ThresholdDefined ThresholdState = iota
	ThresholdStarted
	ThresholdLockedIn
	ThresholdActive
	ThresholdFailed
)

func (s ThresholdState) String() string {
	switch s {
	case ThresholdDefined:
		return "defined"
	case ThresholdStarted:
		return "started"
	case ThresholdLockedIn:
		return "locked-in"
	case ThresholdActive:
		return "active"
	case ThresholdFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// windowVotes records, one bit per block, whether each of the window
// headers ending at (and including) endHeight set bitNumber in its
// version, using a space-efficient bitset rather than a bool slice.
func windowVotes(b *BlockChain, endHeight int64, window int64, bitNumber uint8) bitset.Bytes {
	votes := bitset.NewBytes(int(window))

	start := endHeight - window + 1
	if start < 0 {
		start = 0
	}
	for h := start; h <= endHeight; h++ {
		id, ok := b.index.idAtHeight(h)
		if !ok {
			continue
		}
		header, ok := b.index.header(id)
		if !ok {
			continue
		}
		version := uint32(header.Version)
		if version&vbTopMask != vbTopBits {
			continue
		}
		if version&(uint32(1)<<bitNumber) != 0 {
			votes.Set(int(h - start))
		}
	}
	return votes
}

// countVotes tallies the set bits in votes across the first n positions.
func countVotes(votes bitset.Bytes, n int) uint32 {
	var count uint32
	for i := 0; i < n; i++ {
		if votes.Get(i) {
			count++
		}
	}
	return count
}

// DeploymentState reports the current threshold state of a BIP9-style
// deployment, walking the confirmation window ending at the current
// main-chain tip. Unlike the original's cached per-window state machine,
// this recomputes directly from the header index on every call: the
// header set this store keeps in memory is small enough that memoizing
// intermediate window states is not worth the bookkeeping.
func (b *BlockChain) DeploymentState(params *chaincfg.Params, deployment *chaincfg.ConsensusDeployment, now time.Time) ThresholdState {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	window := int64(params.MinerConfirmationWindow)
	if window <= 0 {
		return ThresholdDefined
	}
	tip := b.index.mainChainHeight()
	if tip < 0 {
		return ThresholdDefined
	}

	unixNow := uint64(now.Unix())
	if unixNow < deployment.StartTime {
		return ThresholdDefined
	}
	if deployment.ExpireTime != 0 && unixNow >= deployment.ExpireTime {
		return ThresholdFailed
	}

	// Walk window-aligned boundaries from the tip backwards, the way the
	// original's thresholdState recurses from genesis forward; scanning
	// backward from the tip reaches the same answer without needing a
	// persisted per-window cache.
	windowEnd := (tip / window) * window
	state := ThresholdStarted
	for windowEnd >= 0 {
		votes := windowVotes(b, windowEnd+window-1, window, deployment.BitNumber)
		n := window
		if windowEnd+window-1 > tip {
			n = tip - windowEnd + 1
		}
		count := countVotes(votes, int(n))
		if count >= params.RuleChangeActivationThreshold {
			state = ThresholdLockedIn
			if windowEnd+2*window <= tip {
				state = ThresholdActive
			}
			break
		}
		windowEnd -= window
	}
	return state
}
