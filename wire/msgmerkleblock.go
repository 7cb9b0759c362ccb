// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/tkeycoin/tkeyd/chainhash"
)

// maxFlagsPerMerkleBlock is the maximum number of flag bytes allowed in a
// single merkleblock message.
const maxFlagsPerMerkleBlock = maxTxPerBlock

// MsgMerkleBlock implements the Message interface and represents a
// merkleblock message, delivering a block header plus a partial merkle
// branch proving a set of filtered transactions belong to it.
type MsgMerkleBlock struct {
	Header       BlockHeader
	Transactions uint32
	Hashes       []*chainhash.Hash
	Flags        []byte
}

// AddTxHash adds a new transaction hash to the merkle branch.
func (msg *MsgMerkleBlock) AddTxHash(hash *chainhash.Hash) error {
	if len(msg.Hashes)+1 > maxTxPerBlock {
		return messageError("MsgMerkleBlock.AddTxHash", "too many tx hashes for message")
	}
	msg.Hashes = append(msg.Hashes, hash)
	return nil
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgMerkleBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, &msg.Header); err != nil {
		return err
	}
	if err := readElement(r, &msg.Transactions); err != nil {
		return err
	}

	hashCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if hashCount > maxTxPerBlock {
		return messageError("MsgMerkleBlock.BtcDecode", fmt.Sprintf(
			"too many tx hashes for message [count %d, max %d]",
			hashCount, maxTxPerBlock))
	}

	hashes := make([]chainhash.Hash, hashCount)
	msg.Hashes = make([]*chainhash.Hash, hashCount)
	for i := uint64(0); i < hashCount; i++ {
		hash := &hashes[i]
		if err := readElement(r, hash); err != nil {
			return err
		}
		msg.Hashes[i] = hash
	}

	flags, err := ReadVarBytes(r, maxFlagsPerMerkleBlock, "merkle branch flags")
	if err != nil {
		return err
	}
	msg.Flags = flags
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgMerkleBlock) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.Hashes) > maxTxPerBlock {
		return messageError("MsgMerkleBlock.BtcEncode", "too many tx hashes for message")
	}
	if len(msg.Flags) > maxFlagsPerMerkleBlock {
		return messageError("MsgMerkleBlock.BtcEncode", "too many flag bytes for message")
	}

	if err := writeBlockHeader(w, &msg.Header); err != nil {
		return err
	}
	if err := writeElement(w, msg.Transactions); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.Hashes))); err != nil {
		return err
	}
	for _, hash := range msg.Hashes {
		if err := writeElement(w, hash); err != nil {
			return err
		}
	}

	return WriteVarBytes(w, msg.Flags)
}

// Command returns the protocol command string for the message.
func (msg *MsgMerkleBlock) Command() string { return CmdMerkleBlock }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgMerkleBlock) MaxPayloadLength(pver uint32) uint32 {
	return MaxBlockHeaderPayload + 4 +
		uint32(VarIntSerializeSize(maxTxPerBlock)) + (maxTxPerBlock * chainhash.HashSize) +
		uint32(VarIntSerializeSize(maxFlagsPerMerkleBlock)) + maxFlagsPerMerkleBlock
}

// NewMsgMerkleBlock returns a new merkleblock message that conforms to the
// Message interface.
func NewMsgMerkleBlock(bh *BlockHeader) *MsgMerkleBlock {
	return &MsgMerkleBlock{
		Header:       *bh,
		Transactions: 0,
		Hashes:       make([]*chainhash.Hash, 0),
		Flags:        make([]byte, 0),
	}
}
