// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha1"
	"crypto/sha256"

	"github.com/tkeycoin/tkeyd/chainhash"
	"golang.org/x/crypto/ripemd160"
)

// calcHash calculates the hash of hasher over buf.
func calcHash(buf []byte, hasher interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
}) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(sha256(b)).
func Hash160(buf []byte) []byte {
	return calcHash(calcHash(buf, sha256.New()), ripemd160.New())
}

// Hash256 calculates double SHA-256 of buf, matching chainhash.HashFuncB.
func Hash256(buf []byte) []byte {
	h := chainhash.HashFuncB(buf)
	return h
}

// Sha1 calculates sha1(b).
func Sha1(buf []byte) []byte {
	h := sha1.Sum(buf)
	return h[:]
}

// Sha256 calculates sha256(b).
func Sha256(buf []byte) []byte {
	h := sha256.Sum256(buf)
	return h[:]
}

// Ripemd160 calculates ripemd160(b).
func Ripemd160(buf []byte) []byte {
	return calcHash(buf, ripemd160.New())
}
