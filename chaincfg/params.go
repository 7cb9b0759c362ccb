// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain parameters for the networks supported by
// tkeyd: a plain proof-of-work, non-staking model.
package chaincfg

import (
	"encoding/hex"
	"math/big"
	"time"

	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// DNSSeed identifies a DNS seed used to discover peers on a network.
type DNSSeed struct {
	Host string

	// HasFiltering indicates whether the seed supports filtering by
	// service bits via the NODE_NETWORK-style OnionCat trick.
	HasFiltering bool
}

// Checkpoint identifies a known-good block by height and hash, used to
// reject deep reorganizations below it without full validation.
type Checkpoint struct {
	Height int64
	Hash   *chainhash.Hash
}

// ConsensusDeployment defines the specific parameters to use for a
// BIP9-style soft-fork deployment.
type ConsensusDeployment struct {
	BitNumber  uint8
	StartTime  uint64
	ExpireTime uint64
}

// Params holds the network parameters for a TKEY chain: genesis, proof of
// work limits, retarget timing, checkpoints, and address encoding magics.
// Stake-specific and Equihash-specific fields (SBits, StakeVersion,
// TicketPoolSize, Algorithms, ...) are omitted since this is a plain
// proof-of-work, non-staking chain.
type Params struct {
	Name        string
	Net         wire.CurrencyNet
	DefaultPort string
	DNSSeeds    []DNSSeed

	GenesisBlock *wire.MsgBlock
	GenesisHash  chainhash.Hash

	PowLimit             *big.Int
	PowLimitBits         uint32
	ReduceMinDifficulty  bool
	MinDiffReductionTime time.Duration
	GenerateSupported    bool

	MaximumBlockSize   int
	MaxTxSize          int
	TargetTimePerBlock time.Duration
	TargetTimespan     time.Duration
	RetargetAdjustmentFactor int64

	SubsidyHalvingInterval int64
	BaseSubsidy            int64
	CoinbaseMaturity       uint16

	Checkpoints []Checkpoint

	AssumeValid       chainhash.Hash
	MinKnownChainWork *big.Int

	RuleChangeActivationThreshold uint32
	MinerConfirmationWindow       uint32
	Deployments                   map[uint32][]ConsensusDeployment

	AcceptNonStdTxs bool

	// Address encoding magics.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	PrivateKeyID     byte

	// BIP32 hierarchical deterministic extended key magics.
	HDPrivateKeyID [4]byte
	HDPublicKeyID  [4]byte
	HDCoinType     uint32
}

var bigOne = big.NewInt(1)

// hexDecode decodes a hex string, panicking on malformed input since it is
// only ever used on the package's own compile-time constants.
func hexDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// newHashFromStr parses a hash from its big-endian hex string form, as
// displayed by block explorers, panicking on malformed input for the same
// reason as hexDecode.
func newHashFromStr(hexStr string) *chainhash.Hash {
	h, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return h
}

// hexToBigInt parses a hex string into a big.Int, panicking on malformed
// input.
func hexToBigInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("chaincfg: invalid hex constant " + s)
	}
	return n
}

// bigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number, the same "nBits" encoding used throughout the
// Bitcoin-derived family for a block header's difficulty target.
func bigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	exponent := uint(len(n.Bytes()))
	var mantissa uint32
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}
