// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/tkeycoin/tkeyd/wire"
)

// defaultTargetTimePerBlock is the average spacing between blocks for the
// main and test networks.
const defaultTargetTimePerBlock = 150 * time.Second

// genesisCoinbaseScript is the signature script of the main network genesis
// block's coinbase transaction.
var genesisCoinbaseScript = hexDecode("0000")

// genesisOutputScript is the public key script of the main network genesis
// block's single coinbase output.
var genesisOutputScript = hexDecode("801679e98561ada96caec2949a5d41c4cab3851e" +
	"b740d951c10ecbcf265c1fd9")

func newGenesisBlock(timestamp time.Time, bits uint32, outputValue int64) *wire.MsgBlock {
	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   1,
			Timestamp: timestamp,
			Bits:      bits,
			Nonce:     0,
			Chain:     0,
			Height:    -1,
		},
		Transactions: []*wire.MsgTx{{
			Version: 1,
			TxIn: []*wire.TxIn{{
				PreviousOutPoint: wire.OutPoint{
					Index: 0xffffffff,
				},
				SignatureScript: genesisCoinbaseScript,
				Sequence:        0xffffffff,
			}},
			TxOut: []*wire.TxOut{{
				Value:    outputValue,
				PkScript: genesisOutputScript,
			}},
			LockTime: 0,
		}},
	}
	block.Header.MerkleRoot = block.Transactions[0].TxHash()
	return block
}

// MainNetParams returns the network parameters for the main TKEY network.
func MainNetParams() *Params {
	// mainPowLimit is the highest proof of work value a main network block
	// can have, the value 2^224 - 1.
	mainPowLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	genesisBlock := newGenesisBlock(
		time.Unix(1531731600, 0), // Monday, 16-Jul-18 09:00:00 UTC
		bigToCompact(mainPowLimit),
		0,
	)

	return &Params{
		Name:        "mainnet",
		Net:         wire.MainNet,
		DefaultPort: "9666",
		DNSSeeds: []DNSSeed{
			{Host: "seed.tkeycoin.org", HasFiltering: true},
		},

		GenesisBlock: genesisBlock,
		GenesisHash:  genesisBlock.BlockHash(),

		PowLimit:                 mainPowLimit,
		PowLimitBits:              bigToCompact(mainPowLimit),
		ReduceMinDifficulty:       false,
		GenerateSupported:         false,
		MaximumBlockSize:          4_000_000,
		MaxTxSize:                 1_000_000,
		TargetTimePerBlock:        defaultTargetTimePerBlock,
		TargetTimespan:            defaultTargetTimePerBlock * 2016,
		RetargetAdjustmentFactor:  4,
		SubsidyHalvingInterval:    210000,
		BaseSubsidy:               50 * 1e8,
		CoinbaseMaturity:          100,

		Checkpoints: []Checkpoint{
			{Height: 0, Hash: newHashFromStr(genesisBlock.BlockHash().String())},
		},

		RuleChangeActivationThreshold: 1916, // 95%
		MinerConfirmationWindow:       2016,
		Deployments:                   map[uint32][]ConsensusDeployment{},

		AcceptNonStdTxs: false,

		PubKeyHashAddrID: 0x21,
		ScriptHashAddrID: 0x34,
		PrivateKeyID:     0x80,

		HDPrivateKeyID: [4]byte{0x04, 0x88, 0xAD, 0xE4},
		HDPublicKeyID:  [4]byte{0x04, 0x88, 0xB2, 0x1E},
		HDCoinType:     0,
	}
}
