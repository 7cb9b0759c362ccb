// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// SigChecker defines the functions a script engine needs to verify
// signatures and locktime-style opcodes against the spending transaction,
// generalizing original_source's BaseSignatureChecker interface.
type SigChecker interface {
	// CheckSig verifies that sig is a valid ECDSA signature of sigHash
	// under pubKey.
	CheckSig(sigHash []byte, sig *ecdsa.Signature, pubKey *secp256k1.PublicKey) bool

	// CheckLockTime reports whether lockTime satisfies the spending
	// input's own locktime commitment (BIP65).
	CheckLockTime(lockTime scriptNum) bool

	// CheckSequence reports whether sequence satisfies the spending
	// input's relative-locktime commitment (BIP112).
	CheckSequence(sequence scriptNum) bool
}

// TxSigChecker implements SigChecker against a concrete spending
// transaction, input index, and the amount of the output being spent —
// grounded on original_source's GenericTransactionSignatureChecker.
type TxSigChecker struct {
	Tx         *wire.MsgTx
	TxIdx      int
	Amount     int64
	SigCache   *SigCache
	HashCache  *TxSigHashes
}

// CheckSig implements SigChecker.
func (c *TxSigChecker) CheckSig(sigHash []byte, sig *ecdsa.Signature, pubKey *secp256k1.PublicKey) bool {
	var hash chainhash.Hash
	copy(hash[:], sigHash)

	if c.SigCache != nil && c.SigCache.Exists(hash, sig, pubKey) {
		return true
	}

	valid := sig.Verify(sigHash, pubKey)
	if valid && c.SigCache != nil {
		c.SigCache.Add(hash, sig, pubKey, c.Tx)
	}
	return valid
}

// CheckLockTime implements SigChecker, enforcing BIP65 OP_CHECKLOCKTIMEVERIFY
// semantics: the type (block-height vs. unix-time) of lockTime and of the
// transaction's own LockTime must agree, the input's sequence number must
// not be final, and the transaction's commitment must be at least as
// large as the requested one.
func (c *TxSigChecker) CheckLockTime(lockTime scriptNum) bool {
	const lockTimeThreshold = 500000000

	txLockTime := int64(c.Tx.LockTime)
	if !((txLockTime < lockTimeThreshold && int64(lockTime) < lockTimeThreshold) ||
		(txLockTime >= lockTimeThreshold && int64(lockTime) >= lockTimeThreshold)) {
		return false
	}

	if int64(lockTime) > txLockTime {
		return false
	}

	if c.Tx.TxIn[c.TxIdx].Sequence == wire.MaxTxInSequenceNum {
		return false
	}
	return true
}

// CheckSequence implements SigChecker, enforcing BIP112
// OP_CHECKSEQUENCEVERIFY semantics.
func (c *TxSigChecker) CheckSequence(sequence scriptNum) bool {
	const (
		sequenceLockTimeDisableFlag = 1 << 31
		sequenceLockTimeTypeFlag    = 1 << 22
		sequenceLockTimeMask        = 0x0000ffff
	)

	txSequence := int64(c.Tx.TxIn[c.TxIdx].Sequence)

	if c.Tx.Version < 2 {
		return false
	}

	if txSequence&sequenceLockTimeDisableFlag != 0 {
		return false
	}

	if int64(sequence)&sequenceLockTimeDisableFlag != 0 {
		return true
	}

	lockTimeMask := int64(sequenceLockTimeTypeFlag | sequenceLockTimeMask)
	sequenceMasked := int64(sequence) & lockTimeMask
	txSequenceMasked := txSequence & lockTimeMask

	if !((sequenceMasked < sequenceLockTimeTypeFlag && txSequenceMasked < sequenceLockTimeTypeFlag) ||
		(sequenceMasked >= sequenceLockTimeTypeFlag && txSequenceMasked >= sequenceLockTimeTypeFlag)) {
		return false
	}

	return sequenceMasked <= txSequenceMasked
}

// TxSigHashes houses the midstate hashes used by the witness_v0 sighash
// algorithm (BIP143), computed once per transaction and shared across its
// inputs.
type TxSigHashes struct {
	HashPrevOuts chainhash.Hash
	HashSequence chainhash.Hash
	HashOutputs  chainhash.Hash
}

// NewTxSigHashes precomputes the three midstate hashes used by BIP143.
func NewTxSigHashes(tx *wire.MsgTx) *TxSigHashes {
	return &TxSigHashes{
		HashPrevOuts: calcHashPrevOuts(tx),
		HashSequence: calcHashSequence(tx),
		HashOutputs:  calcHashOutputs(tx),
	}
}

func calcHashPrevOuts(tx *wire.MsgTx) chainhash.Hash {
	hw := chainhash.NewHashWriter()
	for _, in := range tx.TxIn {
		hw.Write(in.PreviousOutPoint.Hash[:])
		var idx [4]byte
		binary.LittleEndian.PutUint32(idx[:], in.PreviousOutPoint.Index)
		hw.Write(idx[:])
	}
	return hw.Hash()
}

func calcHashSequence(tx *wire.MsgTx) chainhash.Hash {
	hw := chainhash.NewHashWriter()
	for _, in := range tx.TxIn {
		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], in.Sequence)
		hw.Write(seq[:])
	}
	return hw.Hash()
}

func calcHashOutputs(tx *wire.MsgTx) chainhash.Hash {
	hw := chainhash.NewHashWriter()
	for _, out := range tx.TxOut {
		var val [8]byte
		binary.LittleEndian.PutUint64(val[:], uint64(out.Value))
		hw.Write(val[:])
		wire.WriteVarBytes(hw, out.PkScript)
	}
	return hw.Hash()
}
