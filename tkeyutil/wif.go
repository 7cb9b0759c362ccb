// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tkeyutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/decred/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tkeycoin/tkeyd/chaincfg"
	"github.com/tkeycoin/tkeyd/chainhash"
)

// ErrMalformedPrivateKey describes an error where a WIF-encoded private key
// cannot be decoded due to being improperly formatted. This may occur if
// the byte length is incorrect or an unexpected magic number was
// encountered.
var ErrMalformedPrivateKey = errors.New("malformed private key")

// ErrChecksumMismatch describes an error where decoding failed due to a bad
// checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch")

const (
	// privKeyBytesLen is the size of a private key in bytes.
	privKeyBytesLen = 32

	// cksumBytesLen is the size of the checksum in bytes.
	cksumBytesLen = 4

	// compressMagic flags a WIF-encoded private key as corresponding to a
	// public key serialized in the compressed format, matching the
	// convention Bitcoin-derived chains use.
	compressMagic = 0x01
)

// ErrWrongWIFNetwork describes an error in which the provided WIF is not for
// the expected network.
type ErrWrongWIFNetwork byte

// Error implements the error interface.
func (e ErrWrongWIFNetwork) Error() string {
	return fmt.Sprintf("WIF is not for the network identified by %#02x", byte(e))
}

// WIF contains the individual components described by the Wallet Import
// Format (WIF). A WIF string is typically used to represent a private key
// and its associated address in a way that may be easily copied and
// imported into or exported from wallet software. WIF strings may be
// decoded into this structure by calling DecodeWIF or created with a
// user-provided private key by calling NewWIF. This type carries no
// signature-scheme tag: tkeyd addresses are always secp256k1.
type WIF struct {
	// privKey is the private key being imported or exported.
	privKey *secp256k1.PrivateKey

	// CompressPubKey specifies whether the address controlled by the
	// imported or exported private key was created by hashing a compressed
	// (33-byte) serialized public key, rather than an uncompressed
	// (65-byte) one.
	CompressPubKey bool

	// netID is the network identifier byte used when WIF encoding the
	// private key.
	netID byte
}

// NewWIF creates a new WIF structure to export an address and its private
// key as a string encoded in the Wallet Import Format. The net parameter
// specifies the network for which the WIF string is intended.
func NewWIF(privKey *secp256k1.PrivateKey, net *chaincfg.Params, compress bool) (*WIF, error) {
	if net == nil {
		return nil, errors.New("no network")
	}
	return &WIF{
		privKey:        privKey,
		CompressPubKey: compress,
		netID:          net.PrivateKeyID,
	}, nil
}

// IsForNet returns whether or not the decoded WIF structure is associated
// with the passed network.
func (w *WIF) IsForNet(net *chaincfg.Params) bool {
	return w.netID == net.PrivateKeyID
}

// DecodeWIF creates a new WIF structure by decoding the base58-encoded WIF
// string.
//
// The WIF string must be a base58-encoded string of the following byte
// sequence:
//
//   - 1 byte to identify the network
//   - 32 bytes of a binary-encoded, big-endian, zero-padded private key
//   - Optional 1 byte (equal to 0x01) if the address being imported or
//     exported was created by taking RIPEMD160(SHA256(...)) of a
//     serialized compressed (33-byte) public key
//   - 4 bytes of checksum, equal to the first four bytes of the double
//     SHA-256 of every byte before the checksum in this sequence
//
// If the base58-decoded byte sequence does not match this, DecodeWIF
// returns a non-nil error. ErrMalformedPrivateKey is returned when the WIF
// is of an impossible length. ErrChecksumMismatch is returned if the
// expected checksum does not match the calculated one.
func DecodeWIF(wif string) (*WIF, error) {
	decoded := base58.Decode(wif)
	decodedLen := len(decoded)

	var compress bool
	switch decodedLen {
	case 1 + privKeyBytesLen + 1 + cksumBytesLen:
		if decoded[1+privKeyBytesLen] != compressMagic {
			return nil, ErrMalformedPrivateKey
		}
		compress = true
	case 1 + privKeyBytesLen + cksumBytesLen:
		compress = false
	default:
		return nil, ErrMalformedPrivateKey
	}

	var tosum []byte
	if compress {
		tosum = decoded[:1+privKeyBytesLen+1]
	} else {
		tosum = decoded[:1+privKeyBytesLen]
	}
	cksum := chainhash.HashFuncB(tosum)[:cksumBytesLen]
	if !bytes.Equal(cksum, decoded[decodedLen-cksumBytesLen:]) {
		return nil, ErrChecksumMismatch
	}

	privKeyBytes := decoded[1 : 1+privKeyBytesLen]
	privKey := secp256k1.PrivKeyFromBytes(privKeyBytes)
	netID := decoded[0]

	return &WIF{
		privKey:        privKey,
		CompressPubKey: compress,
		netID:          netID,
	}, nil
}

// String creates the Wallet Import Format string encoding of a WIF
// structure. See DecodeWIF for a detailed breakdown of the format and
// requirements of a valid WIF string.
func (w *WIF) String() string {
	encodeLen := 1 + privKeyBytesLen + cksumBytesLen
	if w.CompressPubKey {
		encodeLen++
	}

	a := make([]byte, 0, encodeLen)
	a = append(a, w.netID)
	a = append(a, w.privKey.Serialize()...)
	if w.CompressPubKey {
		a = append(a, compressMagic)
	}

	cksum := chainhash.HashFuncB(a)
	a = append(a, cksum[:cksumBytesLen]...)
	return base58.Encode(a)
}

// PrivKey returns the private key described by the WIF.
func (w *WIF) PrivKey() *secp256k1.PrivateKey {
	return w.privKey
}

// SerializePubKey returns the serialization of the associated public key,
// compressed or uncompressed according to CompressPubKey.
func (w *WIF) SerializePubKey() []byte {
	pk := w.privKey.PubKey()
	if w.CompressPubKey {
		return pk.SerializeCompressed()
	}
	return pk.SerializeUncompressed()
}
