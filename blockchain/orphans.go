// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/decred/dcrd/lru"
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// maxRecentOrphanHashes bounds the quick membership cache layered on top
// of the orphan multimap, so a flood of duplicate orphan announcements
// cannot grow that cache without bound even though the multimap itself
// is allowed to.
const maxRecentOrphanHashes = 4000

// orphanBlock is a block whose parent has not yet been connected to the
// main chain.
type orphanBlock struct {
	block     *wire.MsgBlock
	prevHash  chainhash.Hash
}

// orphanIndex is a multimap keyed by prev_hash, with the block itself
// carried alongside rather than an indirecting id, since orphans are not
// yet assigned ids in the block index.
type orphanIndex struct {
	mtx sync.Mutex

	byPrevHash map[chainhash.Hash][]*orphanBlock
	byHash     map[chainhash.Hash]*orphanBlock
	recent     *lru.Cache[chainhash.Hash]
}

func newOrphanIndex() *orphanIndex {
	return &orphanIndex{
		byPrevHash: make(map[chainhash.Hash][]*orphanBlock),
		byHash:     make(map[chainhash.Hash]*orphanBlock),
		recent:     lru.NewCache[chainhash.Hash](maxRecentOrphanHashes),
	}
}

// isKnownOrphan reports whether hash is already tracked as an orphan,
// consulting the bounded recent-orphan cache before falling back to the
// authoritative map so a hot duplicate does not need the mutex-guarded
// map lookup.
func (oi *orphanIndex) isKnownOrphan(hash *chainhash.Hash) bool {
	if oi.recent.Contains(*hash) {
		return true
	}

	oi.mtx.Lock()
	_, ok := oi.byHash[*hash]
	oi.mtx.Unlock()
	return ok
}

// add records block as an orphan keyed by its declared previous hash.
func (oi *orphanIndex) add(block *wire.MsgBlock) {
	hash := block.BlockHash()
	prevHash := block.Header.PrevBlock

	ob := &orphanBlock{block: block, prevHash: prevHash}

	oi.mtx.Lock()
	oi.byHash[hash] = ob
	oi.byPrevHash[prevHash] = append(oi.byPrevHash[prevHash], ob)
	oi.mtx.Unlock()

	oi.recent.Add(hash)
}

// takeChildren removes and returns every orphan waiting on prevHash.
func (oi *orphanIndex) takeChildren(prevHash chainhash.Hash) []*wire.MsgBlock {
	oi.mtx.Lock()
	defer oi.mtx.Unlock()

	children := oi.byPrevHash[prevHash]
	if len(children) == 0 {
		return nil
	}
	delete(oi.byPrevHash, prevHash)

	blocks := make([]*wire.MsgBlock, 0, len(children))
	for _, ob := range children {
		delete(oi.byHash, ob.block.BlockHash())
		blocks = append(blocks, ob.block)
	}
	return blocks
}
