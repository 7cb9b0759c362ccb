// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tkeyutil provides Base58Check, WIF, and key-tweak helpers built
// on top of the wire and chainhash primitives, covering the single
// secp256k1 signature scheme this chain uses.
package tkeyutil

import (
	"errors"

	"github.com/decred/base58"
	"github.com/tkeycoin/tkeyd/chainhash"
)

// ErrChecksum indicates that the checksum of a check-encoded string does
// not verify against the checksum.
var ErrChecksum = errors.New("checksum mismatch")

// ErrInvalidFormat indicates that the check-encoded string has an invalid
// format.
var ErrInvalidFormat = errors.New("invalid format: version and/or checksum bytes missing")

const checksumLen = 4

// checksum returns the first four bytes of the double SHA-256 hash of the
// input, the same checksum construction used for wire message headers.
func checksum(input []byte) (cksum [checksumLen]byte) {
	h := chainhash.HashFuncB(input)
	copy(cksum[:], h[:checksumLen])
	return
}

// CheckEncode prepends a version byte and appends a four byte checksum to
// the passed data, encoding the whole thing as a base58 string.
func CheckEncode(input []byte, version byte) string {
	b := make([]byte, 0, 1+len(input)+checksumLen)
	b = append(b, version)
	b = append(b, input...)
	cksum := checksum(b)
	b = append(b, cksum[:]...)
	return base58.Encode(b)
}

// CheckDecode decodes a string checked for version and checksum, returning
// the payload bytes stripped of both and the version byte.
func CheckDecode(input string) (result []byte, version byte, err error) {
	decoded := base58.Decode(input)
	if len(decoded) < 1+checksumLen {
		return nil, 0, ErrInvalidFormat
	}

	version = decoded[0]
	payloadEnd := len(decoded) - checksumLen
	cksum := checksum(decoded[:payloadEnd])
	if !bytesEqual(cksum[:], decoded[payloadEnd:]) {
		return nil, 0, ErrChecksum
	}
	payload := decoded[1:payloadEnd]
	return payload, version, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
