// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import "encoding/hex"

// Hash160Size, the length of a Hash160, is defined in hash.go beside
// HashSize.

// Hash160 is a 20-byte array used to represent the RIPEMD160(SHA256(x))
// digest used by P2PKH/P2SH-style scripts (a uint160). It is stored
// little-endian in memory and printed big-endian.
type Hash160 [Hash160Size]byte

// String returns the byte-reversed hexadecimal encoding of the hash.
func (h Hash160) String() string {
	var reversed Hash160
	for i := 0; i < Hash160Size/2; i++ {
		reversed[i], reversed[Hash160Size-1-i] = h[Hash160Size-1-i], h[i]
	}
	return hex.EncodeToString(reversed[:])
}

// CloneBytes returns a copy of the bytes making up the hash.
func (h *Hash160) CloneBytes() []byte {
	newHash := make([]byte, Hash160Size)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the bytes making up the hash to the passed little-endian
// slice. An error is returned if the slice is not the correct size.
func (h *Hash160) SetBytes(newHash []byte) error {
	if len(newHash) != Hash160Size {
		return ErrHashStrSize
	}
	copy(h[:], newHash)
	return nil
}

// Compare returns -1, 0, or +1 comparing the two hashes lexicographically
// from the most-significant byte.
func (h Hash160) Compare(other Hash160) int {
	for i := Hash160Size - 1; i >= 0; i-- {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// NewHash160FromStr creates a Hash160 from a big-endian hex string.
func NewHash160FromStr(s string) (*Hash160, error) {
	var reversed Hash160
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(decoded) != Hash160Size {
		return nil, ErrHashStrSize
	}
	for i, b := range decoded {
		reversed[Hash160Size-1-i] = b
	}
	return &reversed, nil
}
