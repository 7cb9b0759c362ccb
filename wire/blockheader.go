// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"

	"github.com/tkeycoin/tkeyd/chainhash"
)

// MaxBlockHeaderPayload is the maximum number of bytes a block header can
// be: 4 version + 32 prev + 32 merkle + 4 time + 4 bits + 4 nonce + 4 chain.
const MaxBlockHeaderPayload = 4 + (chainhash.HashSize * 2) + 4 + 4 + 4 + 4

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) and headers (MsgHeaders) messages. Hash is the
// double-SHA-256 of the 7-field serialization below (spec §3). Height and
// ID are runtime-only bookkeeping fields populated by the blockchain store;
// they are never serialized on the wire.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  time.Time
	Bits       uint32
	Nonce      uint32

	// Chain is an opaque multi-chain tag; no consensus rule in this spec
	// inspects it (spec §9 Open Questions).
	Chain uint32

	// Height is -1 until the header is connected to the main chain
	// (spec §3). It is runtime-only and not part of the wire encoding.
	Height int64
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root hash, difficulty bits, and nonce used to
// generate the block with defaults for the remaining fields.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash, bits uint32, nonce uint32, chain uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
		Chain:      chain,
		Height:     -1,
	}
}

// BlockHash computes the double-SHA-256 hash of the 7-field wire
// serialization of the block header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	hw := chainhash.NewHashWriter()
	_ = writeBlockHeader(hw, h)
	return hw.Hash()
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32) error {
	return readBlockHeader(r, h)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32) error {
	return writeBlockHeader(w, h)
}

func readBlockHeader(r io.Reader, h *BlockHeader) error {
	var version uint32
	if err := readElement(r, &version); err != nil {
		return err
	}
	h.Version = int32(version)

	if err := readElement(r, &h.PrevBlock); err != nil {
		return err
	}
	if err := readElement(r, &h.MerkleRoot); err != nil {
		return err
	}

	var sec uint32
	if err := readElement(r, &sec); err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(sec), 0)

	if err := readElement(r, &h.Bits); err != nil {
		return err
	}
	if err := readElement(r, &h.Nonce); err != nil {
		return err
	}
	if err := readElement(r, &h.Chain); err != nil {
		return err
	}
	h.Height = -1
	return nil
}

func writeBlockHeader(w io.Writer, h *BlockHeader) error {
	if err := writeElement(w, uint32(h.Version)); err != nil {
		return err
	}
	if err := writeElement(w, h.PrevBlock); err != nil {
		return err
	}
	if err := writeElement(w, h.MerkleRoot); err != nil {
		return err
	}
	if err := writeElement(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeElement(w, h.Bits); err != nil {
		return err
	}
	if err := writeElement(w, h.Nonce); err != nil {
		return err
	}
	return writeElement(w, h.Chain)
}
