// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/visionx-network/visionx/wire"
)

var testnetChainID = [8]byte{'V', 'I', 'S', 'X', 'T', 'E', 'S', 'T'}

const testnetGenesisTimestamp = 1_735_689_600

// testNetParams is the public test network's parameter set. Unlike
// mainnet, testnet carries a sunset height: blocks at or above it are
// rejected, so the chain stops growing there. No key material is
// exported and a restart against the same chain-data directory is not
// refused.
var testNetParams = Params{
	Name:        "testnet",
	Net:         wire.Testnet,
	ChainID:     testnetChainID,
	DefaultPort: "19108",
	P2PPort:     "19109",
	DNSSeeds: []string{
		"testnet-seed1.visionx.network",
		"testnet-seed2.visionx.network",
	},
	InitialDifficulty:   1,
	TestnetSunsetHeight: DefaultTestnetSunsetHeight,
	ReduceMinDifficulty: false,
}

func init() {
	genesis := buildGenesisBlock(testnetGenesisTimestamp, testNetParams.InitialDifficulty, [wire.MinerAddressSize]byte{})
	testNetParams.GenesisBlock = genesis
	testNetParams.GenesisHash = genesis.HeaderHash()
}

// TestNetParams returns the parameter set for the public test network.
// sunsetHeight overrides DefaultTestnetSunsetHeight when non-zero,
// matching the VISION_TESTNET_SUNSET_HEIGHT override.
func TestNetParams(sunsetHeight uint64) *Params {
	p := testNetParams
	if sunsetHeight != 0 {
		p.TestnetSunsetHeight = sunsetHeight
	}
	return &p
}
