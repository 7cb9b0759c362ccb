// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/tkeycoin/tkeyd/chainhash"
)

// witnessMarker/witnessFlag are the two bytes inserted between the input
// count and the input list when a transaction carries a witness, following
// the segwit wire convention: a zero input count would otherwise be
// ambiguous with an empty transaction.
const (
	witnessMarker = 0x00
	witnessFlag   = 0x01
)

// defaultTxInOutAlloc bounds the slice preallocation so a hostile VarInt
// count can't be used to force an enormous allocation before the reader
// actually supplies that many elements.
const (
	defaultTxInOutAlloc = 512
	maxTxInPerMessage   = (MaxMessagePayload / 41) + 1
	maxTxOutPerMessage  = (MaxMessagePayload / 9) + 1
	maxWitnessItemsPerInput = 500000
	maxWitnessItemSize      = MaxMessagePayload
)

// MaxTxInSequenceNum is the maximum sequence number an input can have.
const MaxTxInSequenceNum uint32 = 0xffffffff

// OutPoint defines a TKEY data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new TKEY transaction outpoint point with the
// provided hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// TxIn defines a TKEY transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
	Witness          TxWitness
}

// NewTxIn returns a new TKEY transaction input with the provided previous
// outpoint point and signature script with a default sequence of
// MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
		Witness:          witness,
	}
}

// TxWitness defines the witness for a TxIn: a stack of byte slices
// consumed by the segwit-mode script interpreter.
type TxWitness [][]byte

// SerializeSize returns the number of bytes it would take to serialize the
// witness.
func (t TxWitness) SerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t)))
	for _, item := range t {
		n += VarIntSerializeSize(uint64(len(item))) + len(item)
	}
	return n
}

// TxOut defines a TKEY transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a new TKEY transaction output with the provided
// transaction value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// MsgTx implements the Message interface and represents a TKEY tx message.
// It is used to deliver transaction information in response to a getdata
// message (MsgGetData) for a given transaction.
//
// Use the AddTxIn and AddTxOut functions to build up the list of transaction
// inputs and outputs.
//
// Serialization follows the Bitcoin segwit format (version, optional
// witness marker/flag, inputs, outputs, witness stacks), with two extra
// uint32 cross-chain tags — SrcChain and DstChain — placed between the
// output list and LockTime. These tags are carried as opaque values; no
// consensus rule inspects them here.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	SrcChain uint32
	DstChain uint32
	LockTime uint32
}

// HasWitness returns whether or not the transaction has any inputs with
// witness data.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) != 0 {
			return true
		}
	}
	return false
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TxHash computes the non-witness double-SHA-256 hash of the transaction,
// used as its identity throughout the store and wire protocol.
func (msg *MsgTx) TxHash() chainhash.Hash {
	hw := chainhash.NewHashWriter()
	_ = msg.serialize(hw, false)
	return hw.Hash()
}

// WitnessHash computes the witness-inclusive double-SHA-256 hash, used as
// the txid committed to by the segwit commitment structure when the
// transaction carries witness data; it equals TxHash for a
// witness-less transaction.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if !msg.HasWitness() {
		return msg.TxHash()
	}
	hw := chainhash.NewHashWriter()
	_ = msg.serialize(hw, true)
	return hw.Hash()
}

// Copy creates a deep copy of a transaction so that the original does not
// get modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		SrcChain: msg.SrcChain,
		DstChain: msg.DstChain,
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		sigScript := make([]byte, len(oldTxIn.SignatureScript))
		copy(sigScript, oldTxIn.SignatureScript)

		var witness TxWitness
		if len(oldTxIn.Witness) > 0 {
			witness = make(TxWitness, len(oldTxIn.Witness))
			for i, w := range oldTxIn.Witness {
				item := make([]byte, len(w))
				copy(item, w)
				witness[i] = item
			}
		}

		newTxIn := TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			SignatureScript:  sigScript,
			Sequence:         oldTxIn.Sequence,
			Witness:          witness,
		}
		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		pkScript := make([]byte, len(oldTxOut.PkScript))
		copy(pkScript, oldTxOut.PkScript)

		newTxOut := TxOut{Value: oldTxOut.Value, PkScript: pkScript}
		newTx.TxOut = append(newTx.TxOut, &newTxOut)
	}

	return &newTx
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	var version uint32
	if err := readElement(r, &version); err != nil {
		return err
	}
	msg.Version = int32(version)

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	var flag [1]byte
	if count == 0 {
		if _, err := io.ReadFull(r, flag[:]); err != nil {
			return err
		}
		if flag[0] != witnessFlag {
			return messageError("MsgTx.BtcDecode", "witness tx but flag byte is not 1")
		}
		count, err = ReadVarInt(r)
		if err != nil {
			return err
		}
	}
	if count > uint64(maxTxInPerMessage) {
		return messageError("MsgTx.BtcDecode", "too many input transactions to fit into max message size")
	}

	txIns := make([]TxIn, count)
	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := &txIns[i]
		if err := readTxIn(r, ti); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > uint64(maxTxOutPerMessage) {
		return messageError("MsgTx.BtcDecode", "too many output transactions to fit into max message size")
	}

	txOuts := make([]TxOut, count)
	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		to := &txOuts[i]
		if err := readTxOut(r, to); err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	if flag[0] != 0 {
		for _, txIn := range msg.TxIn {
			witCount, err := ReadVarInt(r)
			if err != nil {
				return err
			}
			if witCount > maxWitnessItemsPerInput {
				return messageError("MsgTx.BtcDecode", "too many witness items")
			}
			txIn.Witness = make(TxWitness, witCount)
			for j := uint64(0); j < witCount; j++ {
				item, err := ReadVarBytes(r, maxWitnessItemSize, "script witness item")
				if err != nil {
					return err
				}
				txIn.Witness[j] = item
			}
		}
	}

	if err := readElement(r, &msg.SrcChain); err != nil {
		return err
	}
	if err := readElement(r, &msg.DstChain); err != nil {
		return err
	}

	return readElement(r, &msg.LockTime)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	return msg.serialize(w, msg.HasWitness())
}

// serialize performs the actual TxIn/TxOut/witness encoding, shared between
// BtcEncode (always witness-aware) and the hashing paths, which select
// witness inclusion explicitly.
func (msg *MsgTx) serialize(w io.Writer, withWitness bool) error {
	if err := writeElement(w, uint32(msg.Version)); err != nil {
		return err
	}

	if withWitness {
		if err := writeElement(w, uint8(witnessMarker)); err != nil {
			return err
		}
		if err := writeElement(w, uint8(witnessFlag)); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}

	if withWitness {
		for _, ti := range msg.TxIn {
			if err := WriteVarInt(w, uint64(len(ti.Witness))); err != nil {
				return err
			}
			for _, item := range ti.Witness {
				if err := WriteVarBytes(w, item); err != nil {
					return err
				}
			}
		}
	}

	if err := writeElement(w, msg.SrcChain); err != nil {
		return err
	}
	if err := writeElement(w, msg.DstChain); err != nil {
		return err
	}

	return writeElement(w, msg.LockTime)
}

func readTxIn(r io.Reader, ti *TxIn) error {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}
	sigScript, err := ReadVarBytes(r, MaxMessagePayload, "transaction input signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = sigScript
	return readElement(r, &ti.Sequence)
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
		return err
	}
	if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}
	return writeElement(w, ti.Sequence)
}

func readOutPoint(r io.Reader, op *OutPoint) error {
	if err := readElement(r, &op.Hash); err != nil {
		return err
	}
	return readElement(r, &op.Index)
}

func writeOutPoint(w io.Writer, op *OutPoint) error {
	if err := writeElement(w, op.Hash); err != nil {
		return err
	}
	return writeElement(w, op.Index)
}

func readTxOut(r io.Reader, to *TxOut) error {
	var value uint64
	if err := readElement(r, &value); err != nil {
		return err
	}
	to.Value = int64(value)

	pkScript, err := ReadVarBytes(r, MaxMessagePayload, "transaction output public key script")
	if err != nil {
		return err
	}
	to.PkScript = pkScript
	return nil
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if err := writeElement(w, uint64(to.Value)); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PkScript)
}

// Command returns the protocol command string for the message.
func (msg *MsgTx) Command() string { return CmdTx }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 { return MaxMessagePayload }
