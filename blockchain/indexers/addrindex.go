// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package indexers holds secondary lookup structures kept beside the
// header/transaction store: optional indices that let a caller find
// transactions by something other than their own hash. Unlike the main
// store's flat-file rename-over format, an index is disposable — it can
// always be rebuilt by re-indexing every block the main store already
// has — so it is kept in a small embedded key/value database instead.
package indexers

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// AddrIndex maps a output script's hash to every transaction that pays to
// it, letting a caller answer "what has this address received" without a
// linear scan of the whole transaction set.
type AddrIndex struct {
	db *leveldb.DB
}

// NewAddrIndex opens (creating if necessary) an address index at path.
func NewAddrIndex(path string) (*AddrIndex, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &AddrIndex{db: db}, nil
}

// Close releases the underlying database handle.
func (ix *AddrIndex) Close() error {
	return ix.db.Close()
}

// scriptKey builds the lookup key for one (script, txHash) pair: the
// script's hash as a fixed-width prefix so TxsForScript can range-scan it,
// followed by the paying transaction's own hash to keep every entry
// unique.
func scriptKey(pkScript []byte, txHash chainhash.Hash) []byte {
	scriptHash := chainhash.HashB(pkScript)
	key := make([]byte, 0, len(scriptHash)+chainhash.HashSize)
	key = append(key, scriptHash...)
	key = append(key, txHash[:]...)
	return key
}

// IndexBlock records every output script in block against the
// transaction that pays to it.
func (ix *AddrIndex) IndexBlock(block *wire.MsgBlock) error {
	batch := new(leveldb.Batch)
	for _, tx := range block.Transactions {
		hash := tx.TxHash()
		for _, out := range tx.TxOut {
			if len(out.PkScript) == 0 {
				continue
			}
			batch.Put(scriptKey(out.PkScript, hash), []byte{})
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	return ix.db.Write(batch, nil)
}

// TxsForScript returns the hash of every transaction this index has seen
// pay to pkScript.
func (ix *AddrIndex) TxsForScript(pkScript []byte) ([]chainhash.Hash, error) {
	prefix := chainhash.HashB(pkScript)
	iter := ix.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var hashes []chainhash.Hash
	for iter.Next() {
		key := iter.Key()
		if len(key) != len(prefix)+chainhash.HashSize {
			continue
		}
		var hash chainhash.Hash
		copy(hash[:], key[len(prefix):])
		hashes = append(hashes, hash)
	}
	return hashes, iter.Error()
}
