// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/tkeycoin/tkeyd/chainhash"
)

// MsgGetBlockTxn implements the Message interface and represents a
// getblocktxn message, used to request specific transactions from a block
// that were missing after a compact block announcement (grounded on
// original_source's BlockTransactionsRequest).
type MsgGetBlockTxn struct {
	BlockHash chainhash.Hash
	Indexes   []uint64
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgGetBlockTxn) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &msg.BlockHash); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxTxPerBlock {
		return messageError("MsgGetBlockTxn.BtcDecode", fmt.Sprintf(
			"too many indexes for message [count %d, max %d]", count, maxTxPerBlock))
	}

	indexes := make([]uint64, count)
	var lastIndex uint64
	for i := uint64(0); i < count; i++ {
		diff, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if i != 0 {
			lastIndex++
		}
		lastIndex += diff
		indexes[i] = lastIndex
	}
	msg.Indexes = indexes
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding. The
// indexes are delta-encoded as differential VarInts, matching the BIP152
// compact block transaction request convention.
func (msg *MsgGetBlockTxn) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, &msg.BlockHash); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.Indexes))); err != nil {
		return err
	}

	var lastIndex uint64
	for i, idx := range msg.Indexes {
		diff := idx - lastIndex
		if i != 0 {
			diff--
		}
		if err := WriteVarInt(w, diff); err != nil {
			return err
		}
		lastIndex = idx
	}
	return nil
}

// Command returns the protocol command string for the message.
func (msg *MsgGetBlockTxn) Command() string { return CmdGetBlockTxn }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgGetBlockTxn) MaxPayloadLength(pver uint32) uint32 {
	return chainhash.HashSize + uint32(VarIntSerializeSize(maxTxPerBlock)) +
		maxTxPerBlock*uint32(VarIntSerializeSize(maxTxPerBlock))
}

// NewMsgGetBlockTxn returns a new getblocktxn message that conforms to the
// Message interface.
func NewMsgGetBlockTxn(blockHash *chainhash.Hash, indexes []uint64) *MsgGetBlockTxn {
	return &MsgGetBlockTxn{BlockHash: *blockHash, Indexes: indexes}
}
