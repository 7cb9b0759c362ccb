// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tkeyutil

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/pbkdf2"
)

// ErrInvalidTweak is returned when a tweak value is zero or falls outside
// the secp256k1 group order, the same rejection condition the original
// BIP32-derived CExtKey::Derive applies before adding a tweak to a key.
var ErrInvalidTweak = errors.New("invalid tweak value")

// TweakPubKey adds tweak (as a scalar) to pubKey and returns the resulting
// public key, the non-hardened half of a BIP32-style extended key
// derivation with the chain-code and hardened-derivation machinery
// stripped out, narrowed to the single secp256k1 public-point addition
// this chain's crypto contract requires.
func TweakPubKey(pubKey *secp256k1.PublicKey, tweak []byte) (*secp256k1.PublicKey, error) {
	var tweakScalar secp256k1.ModNScalar
	overflow := tweakScalar.SetByteSlice(tweak)
	if overflow || tweakScalar.IsZero() {
		return nil, ErrInvalidTweak
	}

	var tweakPoint, pubPoint, sumPoint secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&tweakScalar, &tweakPoint)
	pubKey.AsJacobian(&pubPoint)
	secp256k1.AddNonConst(&tweakPoint, &pubPoint, &sumPoint)
	sumPoint.ToAffine()

	return secp256k1.NewPublicKey(&sumPoint.X, &sumPoint.Y), nil
}

// TweakPrivKey adds tweak (as a scalar) to privKey and returns the
// resulting private key, the scalar-side counterpart to TweakPubKey.
func TweakPrivKey(privKey *secp256k1.PrivateKey, tweak []byte) (*secp256k1.PrivateKey, error) {
	var tweakScalar secp256k1.ModNScalar
	overflow := tweakScalar.SetByteSlice(tweak)
	if overflow || tweakScalar.IsZero() {
		return nil, ErrInvalidTweak
	}

	sum := new(secp256k1.ModNScalar).Set(&privKey.Key)
	sum.Add(&tweakScalar)
	if sum.IsZero() {
		return nil, ErrInvalidTweak
	}

	return secp256k1.NewPrivateKey(sum), nil
}

// deriveTweak stretches a chain code and index into a 32-byte tweak value
// using PBKDF2-HMAC-SHA256, in place of a BIP32-style HMAC-SHA512 KDF,
// since this chain's extended keys carry no separate chain-code field.
func deriveTweak(chainCode []byte, index uint32) []byte {
	salt := []byte{byte(index >> 24), byte(index >> 16), byte(index >> 8), byte(index)}
	return pbkdf2.Key(chainCode, salt, 2048, 32, sha256.New)
}
