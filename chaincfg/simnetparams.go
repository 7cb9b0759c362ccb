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

// SimNetParams returns the network parameters for the simulation test
// network, used for local development and integration tests where blocks
// must be mined quickly and deterministically.
func SimNetParams() *Params {
	// simNetPowLimit is the highest proof of work value a simnet block can
	// have, the value 2^255 - 1.
	simNetPowLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	genesisBlock := newGenesisBlock(
		time.Unix(1531731600, 0),
		bigToCompact(simNetPowLimit),
		0,
	)

	return &Params{
		Name:        "simnet",
		Net:         wire.SimNet,
		DefaultPort: "19666",
		DNSSeeds:    nil,

		GenesisBlock: genesisBlock,
		GenesisHash:  genesisBlock.BlockHash(),

		PowLimit:                 simNetPowLimit,
		PowLimitBits:             bigToCompact(simNetPowLimit),
		ReduceMinDifficulty:      true,
		MinDiffReductionTime:     defaultTargetTimePerBlock * 2,
		GenerateSupported:        true,
		MaximumBlockSize:         4_000_000,
		MaxTxSize:                1_000_000,
		TargetTimePerBlock:       defaultTargetTimePerBlock,
		TargetTimespan:           defaultTargetTimePerBlock * 2016,
		RetargetAdjustmentFactor: 4,
		SubsidyHalvingInterval:   210000,
		BaseSubsidy:              50 * 1e8,
		CoinbaseMaturity:         16,

		Checkpoints: nil,

		RuleChangeActivationThreshold: 75, // 75%
		MinerConfirmationWindow:       100,
		Deployments:                   map[uint32][]ConsensusDeployment{},

		AcceptNonStdTxs: true,

		PubKeyHashAddrID: 0x3f,
		ScriptHashAddrID: 0x7e,
		PrivateKeyID:     0x64,

		HDPrivateKeyID: [4]byte{0x04, 0x20, 0xb9, 0x03},
		HDPublicKeyID:  [4]byte{0x04, 0x20, 0xbd, 0x3a},
		HDCoinType:     115,
	}
}
