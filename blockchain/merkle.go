// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// nextPowerOfTwo returns the next highest power of two from a given number
// if it is not already a power of two, used to size the merkle tree's
// array-backed storage.
func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}

	exponent := 0
	for 1<<uint(exponent) < n {
		exponent++
	}
	return 1 << uint(exponent)
}

// hashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation, duplicating the left
// hash when right is nil to handle an odd number of nodes at a level.
func hashMerkleBranches(left, right *chainhash.Hash) *chainhash.Hash {
	if right == nil {
		right = left
	}

	var buf [chainhash.HashSize * 2]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])

	newHash := chainhash.HashFunc(buf[:])
	return &newHash
}

// BuildMerkleTreeStore creates a merkle tree from a slice of transactions
// and returns it as a linear array suitable for use in the type Merkle
// proof, matching the standard Bitcoin-derived layout: leaves first,
// followed by each successive level, with the final entry being the root.
func BuildMerkleTreeStore(transactions []*wire.MsgTx) []*chainhash.Hash {
	nextPoT := nextPowerOfTwo(len(transactions))
	arraySize := nextPoT*2 - 1
	merkles := make([]*chainhash.Hash, arraySize)

	for i, tx := range transactions {
		txHash := tx.TxHash()
		merkles[i] = &txHash
	}

	offset := nextPoT
	for i := 0; i < arraySize-offset; i += 2 {
		switch {
		case merkles[i] == nil:
			merkles[offset] = nil
		case merkles[i+1] == nil:
			newHash := hashMerkleBranches(merkles[i], merkles[i])
			merkles[offset] = newHash
		default:
			newHash := hashMerkleBranches(merkles[i], merkles[i+1])
			merkles[offset] = newHash
		}
		offset++
	}

	return merkles
}

// CalcMerkleRoot computes the merkle root hash for the given list of
// transactions, or the zero hash for an empty list.
func CalcMerkleRoot(transactions []*wire.MsgTx) chainhash.Hash {
	if len(transactions) == 0 {
		return chainhash.Hash{}
	}
	merkles := BuildMerkleTreeStore(transactions)
	return *merkles[len(merkles)-1]
}
