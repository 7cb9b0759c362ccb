// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"

	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// Hash type bits at the end of a signature, with SigHashAnyOneCanPay
// combinable with the other three via bitwise OR.
const (
	SigHashOld          = 0x0
	SigHashAll          = 0x1
	SigHashNone         = 0x2
	SigHashSingle       = 0x3
	SigHashAnyOneCanPay = 0x80

	sigHashMask = 0x1f
)

// SigVersion distinguishes the legacy (BASE) sighash algorithm from the
// BIP143 witness_v0 algorithm; the original's sigversion parameter is
// carried through for parity even though its BASE path never reads it
// (see original_source's SignatureHash.cpp).
type SigVersion int

const (
	SigVersionBase SigVersion = iota
	SigVersionWitnessV0
)

// oneHash is the BIP-sanctioned sentinel returned in place of a real
// sighash when SIGHASH_SINGLE is requested on an input with no
// corresponding output (original_source's SignatureHash.cpp special case).
var oneHash = chainhash.Hash{
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// nextInstructionLen returns the number of bytes the instruction starting
// at script[0] occupies, including any opcode and its push data.
func nextInstructionLen(script []byte) int {
	op := script[0]
	switch {
	case op >= OP_DATA_1 && op <= OP_DATA_75:
		n := 1 + int(op)
		if n > len(script) {
			return len(script)
		}
		return n
	case op == OP_PUSHDATA1:
		if len(script) < 2 {
			return len(script)
		}
		n := 2 + int(script[1])
		if n > len(script) {
			return len(script)
		}
		return n
	case op == OP_PUSHDATA2:
		if len(script) < 3 {
			return len(script)
		}
		n := 3 + int(script[1]) + int(script[2])<<8
		if n > len(script) {
			return len(script)
		}
		return n
	case op == OP_PUSHDATA4:
		if len(script) < 5 {
			return len(script)
		}
		size := int(script[1]) | int(script[2])<<8 | int(script[3])<<16 | int(script[4])<<24
		n := 5 + size
		if n > len(script) {
			return len(script)
		}
		return n
	}
	return 1
}

// removeOpcode returns a copy of script with all occurrences of the given
// opcode removed, used to excise OP_CODESEPARATOR before hashing
// (original_source's SerializeScriptCode drops everything up to and
// including each separator it finds while counting them).
func removeOpcode(script []byte, opcode byte) []byte {
	result := make([]byte, 0, len(script))
	for i := 0; i < len(script); {
		instrLen := nextInstructionLen(script[i:])
		if script[i] != opcode {
			end := i + instrLen
			if end > len(script) {
				end = len(script)
			}
			result = append(result, script[i:end]...)
		}
		i += instrLen
	}
	return result
}

// CalcSignatureHash computes the legacy (BASE) signature hash for the
// specified input of tx, to be used when validating signatures under
// scriptCode, matching original_source's SignatureHash with
// sigversion == BASE.
func CalcSignatureHash(scriptCode []byte, hashType uint32, tx *wire.MsgTx, idx int) ([]byte, error) {
	if idx >= len(tx.TxIn) {
		return nil, scriptError(ErrInvalidStackOperation, "input index out of range")
	}

	masked := hashType & sigHashMask
	if masked == SigHashSingle && idx >= len(tx.TxOut) {
		h := oneHash
		return h[:], nil
	}

	scriptCode = removeOpcode(scriptCode, OP_CODESEPARATOR)

	anyoneCanPay := hashType&SigHashAnyOneCanPay != 0
	hashSingle := masked == SigHashSingle
	hashNone := masked == SigHashNone

	hw := chainhash.NewHashWriter()

	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], uint32(tx.Version))
	hw.Write(verBuf[:])

	numInputs := len(tx.TxIn)
	if anyoneCanPay {
		numInputs = 1
	}
	wire.WriteVarInt(hw, uint64(numInputs))

	for i := 0; i < len(tx.TxIn); i++ {
		if anyoneCanPay && i != idx {
			continue
		}
		in := tx.TxIn[i]
		hw.Write(in.PreviousOutPoint.Hash[:])
		var idxBuf [4]byte
		binary.LittleEndian.PutUint32(idxBuf[:], in.PreviousOutPoint.Index)
		hw.Write(idxBuf[:])

		if i == idx {
			wire.WriteVarBytes(hw, scriptCode)
		} else {
			wire.WriteVarBytes(hw, nil)
		}

		seq := in.Sequence
		if i != idx && (hashSingle || hashNone) {
			seq = 0
		}
		var seqBuf [4]byte
		binary.LittleEndian.PutUint32(seqBuf[:], seq)
		hw.Write(seqBuf[:])
	}

	numOutputs := len(tx.TxOut)
	if hashNone {
		numOutputs = 0
	} else if hashSingle {
		numOutputs = idx + 1
	}
	wire.WriteVarInt(hw, uint64(numOutputs))

	for i := 0; i < numOutputs; i++ {
		if hashSingle && i != idx {
			var zero [8]byte
			hw.Write(zero[:])
			wire.WriteVarBytes(hw, nil)
			continue
		}
		out := tx.TxOut[i]
		var valBuf [8]byte
		binary.LittleEndian.PutUint64(valBuf[:], uint64(out.Value))
		hw.Write(valBuf[:])
		wire.WriteVarBytes(hw, out.PkScript)
	}

	var chainBuf [4]byte
	binary.LittleEndian.PutUint32(chainBuf[:], tx.SrcChain)
	hw.Write(chainBuf[:])
	binary.LittleEndian.PutUint32(chainBuf[:], tx.DstChain)
	hw.Write(chainBuf[:])

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	hw.Write(lockBuf[:])

	var htBuf [4]byte
	binary.LittleEndian.PutUint32(htBuf[:], hashType)
	hw.Write(htBuf[:])

	h := hw.Hash()
	return h[:], nil
}

// CalcWitnessSignatureHash computes the BIP143 witness_v0 signature hash
// for the specified input of tx. The original's implementation of this
// path is disabled (see SignatureHash.cpp); this follows the BIP143 text
// directly, extended with the two chain tags in the same position the
// legacy path places them.
func CalcWitnessSignatureHash(scriptCode []byte, sigHashes *TxSigHashes, hashType uint32, tx *wire.MsgTx, idx int, amount int64) ([]byte, error) {
	if idx >= len(tx.TxIn) {
		return nil, scriptError(ErrInvalidStackOperation, "input index out of range")
	}

	masked := hashType & sigHashMask
	anyoneCanPay := hashType&SigHashAnyOneCanPay != 0
	hashSingle := masked == SigHashSingle
	hashNone := masked == SigHashNone

	var zeroHash chainhash.Hash

	hashPrevOuts := zeroHash
	if !anyoneCanPay {
		hashPrevOuts = sigHashes.HashPrevOuts
	}

	hashSequence := zeroHash
	if !anyoneCanPay && !hashSingle && !hashNone {
		hashSequence = sigHashes.HashSequence
	}

	hashOutputs := zeroHash
	if !hashSingle && !hashNone {
		hashOutputs = sigHashes.HashOutputs
	} else if hashSingle && idx < len(tx.TxOut) {
		ohw := chainhash.NewHashWriter()
		out := tx.TxOut[idx]
		var valBuf [8]byte
		binary.LittleEndian.PutUint64(valBuf[:], uint64(out.Value))
		ohw.Write(valBuf[:])
		wire.WriteVarBytes(ohw, out.PkScript)
		hashOutputs = ohw.Hash()
	}

	hw := chainhash.NewHashWriter()

	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], uint32(tx.Version))
	hw.Write(verBuf[:])

	hw.Write(hashPrevOuts[:])
	hw.Write(hashSequence[:])

	in := tx.TxIn[idx]
	hw.Write(in.PreviousOutPoint.Hash[:])
	var idxBuf [4]byte
	binary.LittleEndian.PutUint32(idxBuf[:], in.PreviousOutPoint.Index)
	hw.Write(idxBuf[:])

	wire.WriteVarBytes(hw, scriptCode)

	var amtBuf [8]byte
	binary.LittleEndian.PutUint64(amtBuf[:], uint64(amount))
	hw.Write(amtBuf[:])

	var seqBuf [4]byte
	binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
	hw.Write(seqBuf[:])

	hw.Write(hashOutputs[:])

	var chainBuf [4]byte
	binary.LittleEndian.PutUint32(chainBuf[:], tx.SrcChain)
	hw.Write(chainBuf[:])
	binary.LittleEndian.PutUint32(chainBuf[:], tx.DstChain)
	hw.Write(chainBuf[:])

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	hw.Write(lockBuf[:])

	var htBuf [4]byte
	binary.LittleEndian.PutUint32(htBuf[:], hashType)
	hw.Write(htBuf[:])

	h := hw.Hash()
	return h[:], nil
}
