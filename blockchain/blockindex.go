// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// blockIndex is a dense, append-only record of every header and transaction
// this node has ever seen, addressed by small integer ids as well as by
// hash. It is the in-memory counterpart of the flat-file persistence
// format chainio.go writes out.
//
// blockIndex carries no lock of its own: every access, read or write, goes
// through BlockChain.chainLock. This keeps the index and the main-chain
// array it backs under a single lock instead of two, since chain.go's
// reorg logic must already hold chainLock while touching both.
type blockIndex struct {
	headers    []wire.BlockHeader
	hashToID   map[chainhash.Hash]int
	idToHash   map[int]chainhash.Hash
	txHashToID map[chainhash.Hash]int
	txs        []wire.MsgTx
	merkleToID map[chainhash.Hash]int

	mainChain []int // height -> id

	// blockTxIDs associates a header id with the ordered tx ids it
	// commits to, letting the store hand a requesting peer the full
	// block back. It is rebuilt from freshly-arrived blocks only: the
	// persisted file format (headers || transactions) has no room for
	// per-block membership, so this association does not survive a
	// restart — only the headers and the pooled transactions do.
	blockTxIDs map[int][]int
}

func newBlockIndex() *blockIndex {
	return &blockIndex{
		hashToID:   make(map[chainhash.Hash]int),
		idToHash:   make(map[int]chainhash.Hash),
		txHashToID: make(map[chainhash.Hash]int),
		merkleToID: make(map[chainhash.Hash]int),
		blockTxIDs: make(map[int][]int),
	}
}

// hasHeader reports whether a header with the given hash is already known.
// Caller must hold chainLock.
func (bi *blockIndex) hasHeader(hash *chainhash.Hash) bool {
	_, ok := bi.hashToID[*hash]
	return ok
}

// addHeader stores h if it is not already known and returns its assigned
// id and whether it was newly added. Caller must hold chainLock.
func (bi *blockIndex) addHeader(h wire.BlockHeader) (int, bool) {
	hash := h.BlockHash()

	if id, ok := bi.hashToID[hash]; ok {
		return id, false
	}

	id := len(bi.headers)
	bi.headers = append(bi.headers, h)
	bi.hashToID[hash] = id
	bi.idToHash[id] = hash
	bi.merkleToID[h.MerkleRoot] = id
	return id, true
}

// header returns the header for id, or false if id is out of range.
// Caller must hold chainLock.
func (bi *blockIndex) header(id int) (wire.BlockHeader, bool) {
	if id < 0 || id >= len(bi.headers) {
		return wire.BlockHeader{}, false
	}
	return bi.headers[id], true
}

// idByHash returns the id registered for hash. Caller must hold chainLock.
func (bi *blockIndex) idByHash(hash *chainhash.Hash) (int, bool) {
	id, ok := bi.hashToID[*hash]
	return id, ok
}

// hasTx reports whether a transaction with the given hash is already
// known. Caller must hold chainLock.
func (bi *blockIndex) hasTx(hash *chainhash.Hash) bool {
	_, ok := bi.txHashToID[*hash]
	return ok
}

// addTx stores tx if it is not already known (deduped by hash) and returns
// its assigned id. Caller must hold chainLock.
func (bi *blockIndex) addTx(tx *wire.MsgTx) int {
	hash := tx.TxHash()

	if id, ok := bi.txHashToID[hash]; ok {
		return id
	}

	id := len(bi.txs)
	bi.txs = append(bi.txs, *tx)
	bi.txHashToID[hash] = id
	return id
}

// setBlockTxIDs records the ordered tx ids headerID commits to, so the
// full block can be handed back out later. Caller must hold chainLock.
func (bi *blockIndex) setBlockTxIDs(headerID int, txIDs []int) {
	bi.blockTxIDs[headerID] = txIDs
}

// blockTxs returns the ordered transactions headerID commits to, or false
// if this store never saw the full block (only its header). Caller must
// hold chainLock.
func (bi *blockIndex) blockTxs(headerID int) ([]wire.MsgTx, bool) {
	ids, ok := bi.blockTxIDs[headerID]
	if !ok {
		return nil, false
	}
	txs := make([]wire.MsgTx, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(bi.txs) {
			return nil, false
		}
		txs[i] = bi.txs[id]
	}
	return txs, true
}

// hasBlock reports whether the full block for hash (header plus every
// transaction it commits to) has been connected to the chain. Caller must
// hold chainLock.
func (bi *blockIndex) hasBlock(hash *chainhash.Hash) bool {
	id, ok := bi.hashToID[*hash]
	if !ok {
		return false
	}
	if _, ok := bi.blockTxIDs[id]; !ok {
		return false
	}
	return bi.headers[id].Height >= 0
}

// mainChainHeight returns the current tip height, or -1 if the chain is
// empty. Caller must hold chainLock.
func (bi *blockIndex) mainChainHeight() int64 {
	return int64(len(bi.mainChain)) - 1
}

// idAtHeight returns the id of the main-chain block at height, or false if
// out of range. Caller must hold chainLock.
func (bi *blockIndex) idAtHeight(height int64) (int, bool) {
	if height < 0 || height >= int64(len(bi.mainChain)) {
		return 0, false
	}
	return bi.mainChain[height], true
}

// hashAtHeight returns the hash of the main-chain block at height. Caller
// must hold chainLock.
func (bi *blockIndex) hashAtHeight(height int64) (chainhash.Hash, bool) {
	id, ok := bi.idAtHeight(height)
	if !ok {
		return chainhash.Hash{}, false
	}
	return bi.idToHash[id], true
}

// snapshot returns shallow copies of the header and transaction slices for
// the persister to serialize without holding chainLock for the duration of
// a disk write. Caller must hold chainLock.
func (bi *blockIndex) snapshot() ([]wire.BlockHeader, []wire.MsgTx) {
	headers := make([]wire.BlockHeader, len(bi.headers))
	copy(headers, bi.headers)
	txs := make([]wire.MsgTx, len(bi.txs))
	copy(txs, bi.txs)
	return headers, txs
}

// restore repopulates the index from previously persisted headers and
// transactions. Caller must hold chainLock.
func (bi *blockIndex) restore(headers []wire.BlockHeader, txs []wire.MsgTx) {
	for _, h := range headers {
		h := h
		hash := h.BlockHash()
		id := len(bi.headers)
		bi.headers = append(bi.headers, h)
		bi.hashToID[hash] = id
		bi.idToHash[id] = hash
		bi.merkleToID[h.MerkleRoot] = id
		if h.Height >= 0 {
			for int64(len(bi.mainChain)) <= h.Height {
				bi.mainChain = append(bi.mainChain, 0)
			}
			bi.mainChain[h.Height] = id
		}
	}
	for i := range txs {
		tx := txs[i]
		hash := tx.TxHash()
		id := len(bi.txs)
		bi.txs = append(bi.txs, tx)
		bi.txHashToID[hash] = id
	}
}
