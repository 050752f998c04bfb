// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/visionx-network/visionx/wire"
)

// mainnetChainID identifies the production VisionX network in every
// handshake.
var mainnetChainID = [8]byte{'V', 'I', 'S', 'X', 'M', 'A', 'I', 'N'}

// mainnetGenesisTimestamp is the Unix timestamp stamped into the
// mainnet genesis header.
const mainnetGenesisTimestamp = 1_735_689_600 // 2025-01-01T00:00:00Z

// buildGenesisBlock constructs the height-0 block for a network: an
// all-zero prev_hash, no transactions, and a transactions_root computed
// over the (empty) transaction list, matching IsGenesis's invariant
//. This is a supplemented feature: the distilled spec
// never writes out a genesis constructor explicitly, but every
// consensus-following node needs one to bootstrap chain state.
func buildGenesisBlock(timestamp uint64, difficulty uint64, minerAddress [wire.MinerAddressSize]byte) *wire.Block {
	b := &wire.Block{
		Header: wire.BlockHeader{
			Version:      1,
			Height:       0,
			Timestamp:    timestamp,
			Difficulty:   difficulty,
			MinerAddress: minerAddress,
		},
	}
	b.ComputeTransactionsRoot()
	return b
}

// mainNetParams is the production network's parameter set.
var mainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.Mainnet,
	ChainID:     mainnetChainID,
	DefaultPort: "9108",
	P2PPort:     "9109",
	DNSSeeds: []string{
		"seed1.visionx.network",
		"seed2.visionx.network",
		"seed3.visionx.network",
	},
	InitialDifficulty:   1,
	TestnetSunsetHeight: 0, // not applicable to mainnet
	ReduceMinDifficulty: false,
}

func init() {
	genesis := buildGenesisBlock(mainnetGenesisTimestamp, mainNetParams.InitialDifficulty, [wire.MinerAddressSize]byte{})
	mainNetParams.GenesisBlock = genesis
	mainNetParams.GenesisHash = genesis.HeaderHash()
}

// MainNetParams returns the parameter set for the production network.
func MainNetParams() *Params {
	p := mainNetParams
	return &p
}
