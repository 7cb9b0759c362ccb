// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the fixed-size hash types used throughout the
// TKEY wire protocol, block store, and script engine: a 32-byte Hash
// (double-SHA-256 digests) and a 20-byte Hash160 (RIPEMD160(SHA256(x))
// digests), plus an incremental double-SHA-256 writer used for block
// header, transaction and signature hashing.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes in a Hash (a uint256).
const HashSize = 32

// Hash160Size is the number of bytes in a Hash160 (a uint160).
const Hash160Size = 20

// MaxHashStringSize is the maximum length of a Hash hex string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that has too many characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is a 32-byte array used to represent the double-SHA-256 digest of
// blocks, transactions, and merkle nodes. It is stored little-endian in
// memory (byte 0 is the least-significant byte) and printed big-endian, to
// match the historical Bitcoin display convention.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching conventional big-endian display order.
func (h Hash) String() string {
	var reversed Hash
	for i := 0; i < HashSize/2; i++ {
		reversed[i], reversed[HashSize-1-i] = h[HashSize-1-i], h[i]
	}
	return hex.EncodeToString(reversed[:])
}

// CloneBytes returns a copy of the bytes making up the hash, in the
// little-endian wire order.
func (h *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the bytes making up the hash to the passed little-endian
// slice. An error is returned if the slice is not the correct size.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns whether the two hashes are byte-for-byte identical. Two
// nil hashes are equal; a nil hash never equals a non-nil one.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// Compare returns -1, 0, or +1 comparing the two hashes lexicographically
// from the most-significant byte, i.e. in the same order as String().
func (h Hash) Compare(other Hash) int {
	for i := HashSize - 1; i >= 0; i-- {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// NewHash returns a new Hash from a little-endian byte slice.
func NewHash(newHash []byte) (*Hash, error) {
	var h Hash
	if err := h.SetBytes(newHash); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewHashFromStr creates a Hash from a big-endian hash string. The string
// must consist only of hex digits and be at most MaxHashStringSize bytes
// long; it is zero-padded on the left (as a big-endian number) if shorter.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	if err := Decode(ret, hash); err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the big-endian hex string encoding of a Hash into dst.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var reversedHash Hash
	_, err := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	for i, b := range reversedHash[:HashSize/2] {
		reversedHash[i], reversedHash[HashSize-1-i] = reversedHash[HashSize-1-i], b
	}
	*dst = reversedHash
	return nil
}

// HashB calculates the single SHA-256 digest of the passed data.
func HashB(b []byte) []byte {
	hash := sha256.Sum256(b)
	return hash[:]
}

// HashH calculates the single SHA-256 digest of the passed data and returns
// it as a Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// HashFuncB calculates the double-SHA-256 digest of the passed data and
// returns it as a byte slice.
func HashFuncB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// HashFunc calculates the double-SHA-256 digest of the passed data and
// returns it as a Hash.
func HashFunc(b []byte) Hash {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}
