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

// maxInvPerMsg is the maximum number of inventory vectors that can be in a
// single inv, getdata, or notfound message, matching Node::MAX_INV_COUNT.
const maxInvPerMsg = 50000

// maxInvVectPayload is the maximum byte size of a single encoded InvVect:
// a 4-byte type plus a chainhash.Hash.
const maxInvVectPayload = 4 + chainhash.HashSize

// defaultInvListAlloc is the default backing array size for a new
// inventory message, matching the common case of a single block or
// handful of transactions rather than the protocol maximum.
const defaultInvListAlloc = 1000

// InvVect defines a TKEY inventory vector, used to describe data, as
// specified by the InvType field, that a peer has or wants.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// NewInvVect returns a new InvVect using the provided type and hash.
func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{Type: typ, Hash: *hash}
}

func readInvVect(r io.Reader, iv *InvVect) error {
	var typ uint32
	if err := readElement(r, &typ); err != nil {
		return err
	}
	iv.Type = InvType(typ)
	return readElement(r, &iv.Hash)
}

func writeInvVect(w io.Writer, iv *InvVect) error {
	if err := writeElement(w, uint32(iv.Type)); err != nil {
		return err
	}
	return writeElement(w, iv.Hash)
}

func readInvVectList(r io.Reader, fieldName string) ([]*InvVect, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxInvPerMsg {
		return nil, messageError(fieldName, fmt.Sprintf(
			"too many inventory vectors for message [count %d, max %d]",
			count, maxInvPerMsg))
	}

	list := make([]*InvVect, count)
	for i := uint64(0); i < count; i++ {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return nil, err
		}
		list[i] = iv
	}
	return list, nil
}

func writeInvVectList(w io.Writer, fieldName string, list []*InvVect) error {
	if len(list) > maxInvPerMsg {
		return messageError(fieldName, fmt.Sprintf(
			"too many inventory vectors for message [count %d, max %d]",
			len(list), maxInvPerMsg))
	}

	if err := WriteVarInt(w, uint64(len(list))); err != nil {
		return err
	}
	for _, iv := range list {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}
