// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// maxShortIDsPerCmpctBlock bounds the short transaction ID list of a single
// cmpctblock message.
const maxShortIDsPerCmpctBlock = maxTxPerBlock

// PrefilledTransaction represents a transaction that is explicitly included
// in a cmpctblock message, indexed by its position in the block (grounded
// on original_source's PrefilledTransaction companion to HeaderAndShortIDs).
type PrefilledTransaction struct {
	Index uint64
	Tx    MsgTx
}

// MsgCmpctBlock implements the Message interface and represents a
// cmpctblock message, a BIP152-style compact block announcement (grounded
// on original_source's HeaderAndShortIDs). ShortIDs are 6-byte
// little-endian integers; the full 8-byte field is kept in memory and
// truncated on the wire.
type MsgCmpctBlock struct {
	Header       BlockHeader
	Nonce        uint64
	ShortIDs     []uint64
	PrefilledTxn []PrefilledTransaction
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgCmpctBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, &msg.Header); err != nil {
		return err
	}
	if err := readElement(r, &msg.Nonce); err != nil {
		return err
	}

	shortIDCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if shortIDCount > maxShortIDsPerCmpctBlock {
		return messageError("MsgCmpctBlock.BtcDecode", fmt.Sprintf(
			"too many short ids for message [count %d, max %d]",
			shortIDCount, maxShortIDsPerCmpctBlock))
	}

	msg.ShortIDs = make([]uint64, shortIDCount)
	for i := uint64(0); i < shortIDCount; i++ {
		var buf [6]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		msg.ShortIDs[i] = uint64(buf[0]) | uint64(buf[1])<<8 |
			uint64(buf[2])<<16 | uint64(buf[3])<<24 |
			uint64(buf[4])<<32 | uint64(buf[5])<<40
	}

	prefilledCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if prefilledCount > maxTxPerBlock {
		return messageError("MsgCmpctBlock.BtcDecode", fmt.Sprintf(
			"too many prefilled transactions for message [count %d, max %d]",
			prefilledCount, maxTxPerBlock))
	}

	msg.PrefilledTxn = make([]PrefilledTransaction, prefilledCount)
	var lastIndex uint64
	for i := uint64(0); i < prefilledCount; i++ {
		diff, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if i != 0 {
			lastIndex++
		}
		lastIndex += diff

		pt := &msg.PrefilledTxn[i]
		pt.Index = lastIndex
		if err := pt.Tx.BtcDecode(r, pver); err != nil {
			return err
		}
	}
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgCmpctBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeader(w, &msg.Header); err != nil {
		return err
	}
	if err := writeElement(w, msg.Nonce); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.ShortIDs))); err != nil {
		return err
	}
	for _, id := range msg.ShortIDs {
		buf := [6]byte{
			byte(id), byte(id >> 8), byte(id >> 16),
			byte(id >> 24), byte(id >> 32), byte(id >> 40),
		}
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.PrefilledTxn))); err != nil {
		return err
	}
	var lastIndex uint64
	for i, pt := range msg.PrefilledTxn {
		diff := pt.Index - lastIndex
		if i != 0 {
			diff--
		}
		if err := WriteVarInt(w, diff); err != nil {
			return err
		}
		lastIndex = pt.Index
		if err := pt.Tx.BtcEncode(w, pver); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for the message.
func (msg *MsgCmpctBlock) Command() string { return CmdCmpctBlock }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgCmpctBlock) MaxPayloadLength(pver uint32) uint32 {
	return MaxBlockHeaderPayload + 8 + MaxMessagePayload
}
