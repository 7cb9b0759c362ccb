// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the header/transaction store described for
// this chain: a dense append-only index of everything seen, orphan
// tracking keyed by previous hash, main-chain reorg handling, and a
// coalesced flat-file persistence protocol. It intentionally carries none
// of a staking chain's ticket pool, vote, or stake-difficulty bookkeeping —
// only proof-of-work header/transaction storage and reorg logic.
package blockchain

import (
	"fmt"
	"sync"
	"time"

	"github.com/tkeycoin/tkeyd/chaincfg"
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// AddrIndexer is the subset of blockchain/indexers.AddrIndex that
// BlockChain depends on, letting a caller wire in a secondary index
// without this package importing the (optional) goleveldb-backed store
// directly.
type AddrIndexer interface {
	IndexBlock(block *wire.MsgBlock) error
}

// TaskScheduler decouples connectToAncestor's orphan-reconnection fan-out
// from the caller's goroutine, an escape hatch that keeps orphan chains
// from recursing through arbitrarily deep call stacks.
type TaskScheduler interface {
	Enqueue(func())
}

// inlineScheduler runs the scheduled function immediately; used when no
// external task pool is wired in (e.g. in tests).
type inlineScheduler struct{}

func (inlineScheduler) Enqueue(f func()) { f() }

// BlockChain is the header/transaction store for one network.
type BlockChain struct {
	chainParams *chaincfg.Params
	scheduler   TaskScheduler
	addrIndex   AddrIndexer

	chainLock sync.Mutex
	index     *blockIndex
	orphans   *orphanIndex

	persist *persister
}

// Config bundles BlockChain's construction-time dependencies.
type Config struct {
	ChainParams *chaincfg.Params
	Scheduler   TaskScheduler

	// DataDir is the directory the store's flat file lives in. An empty
	// DataDir disables persistence entirely (useful for tests).
	DataDir string

	// AddrIndex, if set, is fed the outputs of every block AddBlock
	// accepts past its merkle check, orphans included. It is a
	// supplementary lookup structure, not part of the flat-file store
	// itself, so its absence never affects AddBlock's own behavior.
	AddrIndex AddrIndexer
}

// New creates a BlockChain ready to accept headers and blocks. The
// previously persisted store under cfg.DataDir is loaded if present;
// absence of the file is not an error.
func New(cfg *Config) (*BlockChain, error) {
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = inlineScheduler{}
	}

	b := &BlockChain{
		chainParams: cfg.ChainParams,
		scheduler:   scheduler,
		addrIndex:   cfg.AddrIndex,
		index:       newBlockIndex(),
		orphans:     newOrphanIndex(),
	}

	var path string
	if cfg.DataDir != "" {
		path = dataFilePath(cfg.DataDir)
	}
	b.persist = newPersister(path, b)

	if err := b.persist.load(); err != nil {
		return nil, err
	}
	return b, nil
}

// Close flushes any pending save and stops the coalescing timer.
func (b *BlockChain) Close() error {
	return b.persist.close()
}

// GenesisHash returns the network's genesis block hash.
func (b *BlockChain) GenesisHash() chainhash.Hash {
	return b.chainParams.GenesisHash
}

// HasHeader reports whether hash is already a known header.
func (b *BlockChain) HasHeader(hash *chainhash.Hash) bool {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()
	return b.index.hasHeader(hash)
}

// HasTx reports whether hash is already a known transaction.
func (b *BlockChain) HasTx(hash *chainhash.Hash) bool {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()
	return b.index.hasTx(hash)
}

// HasBlock reports whether hash names a block connected to the store.
func (b *BlockChain) HasBlock(hash *chainhash.Hash) bool {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()
	return b.index.hasBlock(hash)
}

// TipHeight returns the current main-chain tip height, or -1 if the chain
// is empty.
func (b *BlockChain) TipHeight() int64 {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()
	return b.index.mainChainHeight()
}

// AddBlockHeader stores h if new and returns whether it was added.
func (b *BlockChain) AddBlockHeader(h wire.BlockHeader) bool {
	b.chainLock.Lock()
	_, added := b.index.addHeader(h)
	b.chainLock.Unlock()

	if added {
		b.persist.scheduleSave()
	}
	return added
}

// AddBlock validates b's merkle root, stores its header and transactions,
// and attempts to connect it (and any orphans it unblocks) to the main
// chain.
func (b *BlockChain) AddBlock(block *wire.MsgBlock) error {
	computed := CalcMerkleRoot(block.Transactions)
	if computed != block.Header.MerkleRoot {
		return ruleError(ErrMerkleRootMismatch, fmt.Sprintf(
			"block %s merkle root mismatch: header %s, computed %s",
			block.BlockHash(), block.Header.MerkleRoot, computed))
	}

	hash := block.BlockHash()
	b.chainLock.Lock()
	id, _ := b.index.addHeader(block.Header)
	txIDs := make([]int, len(block.Transactions))
	for i, tx := range block.Transactions {
		txIDs[i] = b.index.addTx(tx)
	}
	b.index.setBlockTxIDs(id, txIDs)
	b.chainLock.Unlock()

	b.persist.scheduleSave()
	b.connectToAncestor(hash, block)

	if b.addrIndex != nil {
		if err := b.addrIndex.IndexBlock(block); err != nil {
			log.Errorf("address index: failed to index block %s: %v", hash, err)
		}
	}
	return nil
}

// AddTx stores a standalone transaction relayed ahead of any block that
// commits to it — the mempool this store doubles as, per its own
// "size_and_(headers) || size_and_(transactions)" persisted shape.
// It reports whether tx was newly added (false if already known, so the
// caller does not re-announce a transaction twice).
func (b *BlockChain) AddTx(tx *wire.MsgTx) (bool, error) {
	if len(tx.TxIn) == 0 || len(tx.TxOut) == 0 {
		return false, ruleError(ErrEmptyTransaction, fmt.Sprintf(
			"transaction %s has no inputs or no outputs", tx.TxHash()))
	}

	hash := tx.TxHash()
	b.chainLock.Lock()
	already := b.index.hasTx(&hash)
	b.index.addTx(tx)
	b.chainLock.Unlock()

	if !already {
		b.persist.scheduleSave()
	}
	return !already, nil
}

// connectToAncestor implements the reorg/orphan-resolution algorithm for
// the block named by hash.
func (b *BlockChain) connectToAncestor(hash chainhash.Hash, block *wire.MsgBlock) {
	b.chainLock.Lock()

	id, ok := b.index.idByHash(&hash)
	if !ok {
		b.chainLock.Unlock()
		return
	}
	header, _ := b.index.header(id)

	if len(b.index.mainChain) == 0 {
		if header.PrevBlock != (chainhash.Hash{}) || hash != b.chainParams.GenesisHash {
			b.orphans.add(block)
			b.chainLock.Unlock()
			return
		}
		header.Height = 0
		b.index.headers[id] = header
		b.index.mainChain = append(b.index.mainChain, id)
		b.chainLock.Unlock()
		b.scheduleOrphanChildren(hash)
		return
	}

	parentID, ok := b.index.idByHash(&header.PrevBlock)
	if !ok {
		b.orphans.add(block)
		b.chainLock.Unlock()
		return
	}
	parentHeader, ok := b.index.header(parentID)
	if !ok || parentHeader.Height < 0 {
		b.orphans.add(block)
		b.chainLock.Unlock()
		return
	}

	header.Height = parentHeader.Height + 1
	b.index.headers[id] = header

	tipHeight := int64(len(b.index.mainChain)) - 1
	if header.Height >= tipHeight {
		b.rebuildMainChain(id, header.Height)
	}

	b.chainLock.Unlock()
	b.scheduleOrphanChildren(hash)
}

// rebuildMainChain walks back along newID's ancestor chain until it finds
// the height at which the existing main chain already agrees (the fork
// point), then replaces everything above that point with the new path.
// Must be called with chainLock held.
func (b *BlockChain) rebuildMainChain(newID int, newHeight int64) {
	type step struct {
		id     int
		height int64
	}

	var path []step
	curID, curHeight := newID, newHeight

	for {
		atFork := false
		if curHeight >= 0 && curHeight < int64(len(b.index.mainChain)) {
			atFork = b.index.mainChain[curHeight] == curID
		}

		path = append([]step{{curID, curHeight}}, path...)
		if atFork {
			// This id is already correctly placed; it needs no rewrite.
			path = path[1:]
			break
		}
		if curHeight == 0 {
			break
		}

		h, ok := b.index.header(curID)
		if !ok {
			break
		}
		parentID, ok := b.index.idByHash(&h.PrevBlock)
		if !ok {
			break
		}
		curID = parentID
		curHeight--
	}

	if len(path) == 0 {
		return
	}

	forkHeight := path[0].height
	if int64(len(b.index.mainChain)) > forkHeight {
		b.index.mainChain = b.index.mainChain[:forkHeight]
	}
	for _, s := range path {
		b.index.mainChain = append(b.index.mainChain, s.id)
		h, _ := b.index.header(s.id)
		h.Height = s.height
		b.index.headers[s.id] = h
	}
}

// scheduleOrphanChildren hands every orphan waiting on hash to the task
// scheduler for a fresh connectToAncestor attempt, breaking recursion
// depth rather than resolving a deep orphan chain on the calling stack.
func (b *BlockChain) scheduleOrphanChildren(hash chainhash.Hash) {
	children := b.orphans.takeChildren(hash)
	for _, child := range children {
		child := child
		childHash := child.BlockHash()
		b.scheduler.Enqueue(func() {
			b.connectToAncestor(childHash, child)
		})
	}
}

// GetBlockLocator builds a locator anchored at the current tip, doubling
// its step after the first 10 entries, and always ending at genesis.
func (b *BlockChain) GetBlockLocator() []*chainhash.Hash {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	tipHeight := b.index.mainChainHeight()
	if tipHeight < 0 {
		return nil
	}

	var locator []*chainhash.Hash
	step := int64(1)
	height := tipHeight
	for {
		hash, ok := b.index.hashAtHeight(height)
		if ok {
			h := hash
			locator = append(locator, &h)
		}

		if height == 0 {
			break
		}
		if len(locator) >= 10 {
			step *= 2
		}
		if height < step {
			height = 0
		} else {
			height -= step
		}
	}
	return locator
}

// FilterKnownInventory drops entries this store already has from list,
// trimming a getdata/inv request down to what still needs to be fetched
// or relayed.
func (b *BlockChain) FilterKnownInventory(list []*wire.InvVect) []*wire.InvVect {
	out := list[:0]
	for _, iv := range list {
		switch iv.Type {
		case wire.InvTypeTx:
			if b.HasTx(&iv.Hash) {
				continue
			}
		case wire.InvTypeBlock, wire.InvTypeFilteredBlock, wire.InvTypeCmpctBlock:
			if b.HasBlock(&iv.Hash) {
				continue
			}
		case wire.InvTypeError:
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Block reconstructs the full block named by hash, or returns false if this
// store only has its header (or nothing at all). Headers synced from a
// peer's getheaders reply, without a matching getdata round-trip for the
// body, fall into the header-only case.
func (b *BlockChain) Block(hash *chainhash.Hash) (*wire.MsgBlock, bool) {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	id, ok := b.index.idByHash(hash)
	if !ok {
		return nil, false
	}
	header, ok := b.index.header(id)
	if !ok {
		return nil, false
	}
	txs, ok := b.index.blockTxs(id)
	if !ok {
		return nil, false
	}
	out := make([]*wire.MsgTx, len(txs))
	for i := range txs {
		tx := txs[i]
		out[i] = &tx
	}
	return &wire.MsgBlock{Header: header, Transactions: out}, true
}

// Tx returns the transaction named by hash, if this store has ever seen
// one, regardless of which block (if any) committed to it.
func (b *BlockChain) Tx(hash *chainhash.Hash) (*wire.MsgTx, bool) {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	id, ok := b.index.txHashToID[*hash]
	if !ok {
		return nil, false
	}
	tx := b.index.txs[id]
	return &tx, true
}

// maxHeadersPerMsg caps a single getheaders reply, mirroring the wire
// protocol's own per-message inventory/header ceilings.
const maxHeadersPerMsg = 2000

// HeadersFrom walks the main chain forward from the first locator hash it
// recognizes (falling back to genesis if none match) and returns up to
// maxHeadersPerMsg headers, stopping at stopHash if given.
func (b *BlockChain) HeadersFrom(locator []*chainhash.Hash, stopHash chainhash.Hash) []wire.BlockHeader {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	startHeight := int64(0)
	for _, hash := range locator {
		id, ok := b.index.idByHash(hash)
		if !ok {
			continue
		}
		h, ok := b.index.header(id)
		if !ok || h.Height < 0 {
			continue
		}
		startHeight = h.Height + 1
		break
	}

	var out []wire.BlockHeader
	tip := b.index.mainChainHeight()
	for height := startHeight; height <= tip && int64(len(out)) < maxHeadersPerMsg; height++ {
		id, ok := b.index.idAtHeight(height)
		if !ok {
			break
		}
		h, ok := b.index.header(id)
		if !ok {
			break
		}
		out = append(out, h)
		if h.BlockHash() == stopHash {
			break
		}
	}
	return out
}

// saveCoalesceWindow is the delay the persistence timer waits before
// flushing, letting a burst of header/block arrivals share one
// rename-over write.
const saveCoalesceWindow = 5 * time.Second
