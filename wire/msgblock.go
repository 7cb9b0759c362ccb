// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/tkeycoin/tkeyd/chainhash"
)

// maxTxPerBlock bounds the transaction-count VarInt in a block payload.
const maxTxPerBlock = (MaxMessagePayload / minTxPayload) + 1

const minTxPayload = 4 + 1 + 1 + 4 + 4 + 4 // version + zero txin count + zero txout count + two chain tags + locktime

// MsgBlock implements the Message interface and represents a TKEY block
// message. It is used to deliver block and transaction information in
// response to a getdata message (MsgGetData).
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// BlockHash computes the block identifying hash for the block, which is
// simply the double-SHA-256 hash of its header.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, &msg.Header); err != nil {
		return err
	}

	txCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if txCount > uint64(maxTxPerBlock) {
		return messageError("MsgBlock.BtcDecode", "too many transactions to fit into max message size")
	}

	msg.Transactions = make([]*MsgTx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx := &MsgTx{}
		if err := tx.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, tx)
	}
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeader(w, &msg.Header); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.BtcEncode(w, pver); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for the message.
func (msg *MsgBlock) Command() string { return CmdBlock }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgBlock) MaxPayloadLength(pver uint32) uint32 { return MaxMessagePayload }
