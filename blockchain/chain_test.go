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

func newTestChain(t *testing.T) (*BlockChain, *chaincfg.Params) {
	t.Helper()
	params := chaincfg.SimNetParams()
	b, err := New(&Config{ChainParams: params})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b, params
}

func mineBlock(prev chainhash.Hash, height int64) *wire.MsgBlock {
	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
			SignatureScript:  []byte{byte(height)},
			Sequence:         0xffffffff,
		}},
		TxOut: []*wire.TxOut{{Value: 50 * 1e8, PkScript: []byte{0x51}}},
	}

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   1,
			PrevBlock: prev,
			Timestamp: time.Unix(1531731600+height*150, 0),
			Bits:      0x207fffff,
			Height:    -1,
		},
		Transactions: []*wire.MsgTx{tx},
	}
	block.Header.MerkleRoot = CalcMerkleRoot(block.Transactions)
	return block
}

func TestAddBlockGenesisAndLinear(t *testing.T) {
	b, params := newTestChain(t)

	genesis := params.GenesisBlock
	if err := b.AddBlock(genesis); err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}
	if b.TipHeight() != 0 {
		t.Fatalf("TipHeight after genesis = %d, want 0", b.TipHeight())
	}

	prev := genesis.BlockHash()
	for i := int64(1); i <= 5; i++ {
		blk := mineBlock(prev, i)
		if err := b.AddBlock(blk); err != nil {
			t.Fatalf("AddBlock(height %d): %v", i, err)
		}
		if b.TipHeight() != i {
			t.Fatalf("TipHeight after block %d = %d, want %d", i, b.TipHeight(), i)
		}
		prev = blk.BlockHash()
	}
}

func TestAddBlockMerkleMismatch(t *testing.T) {
	b, params := newTestChain(t)

	genesis := params.GenesisBlock
	if err := b.AddBlock(genesis); err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}

	blk := mineBlock(genesis.BlockHash(), 1)
	blk.Header.MerkleRoot = chainhash.Hash{0xff}

	err := b.AddBlock(blk)
	if err == nil {
		t.Fatal("expected merkle root mismatch error, got nil")
	}
	rerr, ok := err.(RuleError)
	if !ok || rerr.ErrorCode != ErrMerkleRootMismatch {
		t.Fatalf("got error %v, want RuleError{ErrMerkleRootMismatch}", err)
	}
}

func TestConnectOrphanThenParent(t *testing.T) {
	b, params := newTestChain(t)
	genesis := params.GenesisBlock
	if err := b.AddBlock(genesis); err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}

	block1 := mineBlock(genesis.BlockHash(), 1)
	block2 := mineBlock(block1.BlockHash(), 2)

	// Block 2 arrives before its parent: it should be parked as an
	// orphan, not connected.
	if err := b.AddBlock(block2); err != nil {
		t.Fatalf("AddBlock(block2): %v", err)
	}
	if b.TipHeight() != 0 {
		t.Fatalf("TipHeight after orphan arrival = %d, want 0", b.TipHeight())
	}
	if b.HasBlock(block2ptr(block2)) {
		t.Fatal("orphaned block2 should not report as connected yet")
	}

	// Once the parent shows up, the orphan should connect automatically.
	if err := b.AddBlock(block1); err != nil {
		t.Fatalf("AddBlock(block1): %v", err)
	}
	if b.TipHeight() != 2 {
		t.Fatalf("TipHeight after orphan resolves = %d, want 2", b.TipHeight())
	}
}

func block2ptr(blk *wire.MsgBlock) *chainhash.Hash {
	h := blk.BlockHash()
	return &h
}

func TestGetBlockLocatorDoublesStep(t *testing.T) {
	b, params := newTestChain(t)
	genesis := params.GenesisBlock
	if err := b.AddBlock(genesis); err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}

	prev := genesis.BlockHash()
	for i := int64(1); i <= 25; i++ {
		blk := mineBlock(prev, i)
		if err := b.AddBlock(blk); err != nil {
			t.Fatalf("AddBlock(height %d): %v", i, err)
		}
		prev = blk.BlockHash()
	}

	locator := b.GetBlockLocator()
	if len(locator) == 0 {
		t.Fatal("locator must be non-empty")
	}
	genesisHash := genesis.BlockHash()
	if *locator[len(locator)-1] != genesisHash {
		t.Fatalf("locator must end at genesis, got %s", locator[len(locator)-1])
	}
	// Heights 25..16 one apart, then steps of 2, 4 and 8 reach 14, 10 and
	// 2, then genesis.
	if len(locator) != 14 {
		t.Fatalf("locator length = %d, want 14", len(locator))
	}
}

func TestFilterKnownInventory(t *testing.T) {
	b, params := newTestChain(t)
	genesis := params.GenesisBlock
	if err := b.AddBlock(genesis); err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}

	genesisHash := genesis.BlockHash()
	unknownHash := chainhash.Hash{0x01}

	list := []*wire.InvVect{
		wire.NewInvVect(wire.InvTypeBlock, &genesisHash),
		wire.NewInvVect(wire.InvTypeBlock, &unknownHash),
		wire.NewInvVect(wire.InvTypeError, &unknownHash),
	}

	filtered := b.FilterKnownInventory(list)
	if len(filtered) != 1 {
		t.Fatalf("filtered length = %d, want 1", len(filtered))
	}
	if filtered[0].Hash != unknownHash {
		t.Fatalf("filtered entry = %s, want %s", filtered[0].Hash, unknownHash)
	}
}

func TestAddTx(t *testing.T) {
	b, _ := newTestChain(t)

	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
			SignatureScript:  []byte{0x01},
			Sequence:         0xffffffff,
		}},
		TxOut: []*wire.TxOut{{Value: 1, PkScript: []byte{0x51}}},
	}

	added, err := b.AddTx(tx)
	if err != nil {
		t.Fatalf("AddTx: %v", err)
	}
	if !added {
		t.Fatal("AddTx on a new transaction reported added = false")
	}

	hash := tx.TxHash()
	if !b.HasTx(&hash) {
		t.Fatal("HasTx false after AddTx")
	}
	got, ok := b.Tx(&hash)
	if !ok || got.TxHash() != hash {
		t.Fatalf("Tx lookup after AddTx: got %v, %v", got, ok)
	}

	added, err = b.AddTx(tx)
	if err != nil {
		t.Fatalf("AddTx (duplicate): %v", err)
	}
	if added {
		t.Fatal("AddTx on an already-known transaction reported added = true")
	}
}

func TestAddTxRejectsEmpty(t *testing.T) {
	b, _ := newTestChain(t)

	tx := &wire.MsgTx{Version: 1}
	_, err := b.AddTx(tx)
	if err == nil {
		t.Fatal("expected error for transaction with no inputs or outputs")
	}
	rerr, ok := err.(RuleError)
	if !ok || rerr.ErrorCode != ErrEmptyTransaction {
		t.Fatalf("got error %v, want RuleError{ErrEmptyTransaction}", err)
	}
}
