// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/visionx-network/visionx/wire"
)

var simNetChainID = [8]byte{'V', 'I', 'S', 'X', 'S', 'I', 'M', 'N'}

const simNetGenesisTimestamp = 1_735_689_600

// simNetParams is the local-development network's parameter set: a
// minimal dataset and difficulty floor so a single machine can produce
// blocks fast enough to exercise the chain orchestrator and reward
// engine in tests without real mining hardware.
var simNetParams = Params{
	Name:        "simnet",
	Net:         wire.Testnet,
	ChainID:     simNetChainID,
	DefaultPort: "29108",
	P2PPort:     "29109",
	DNSSeeds:    nil, // simnet peers are configured explicitly, never discovered
	InitialDifficulty:   1,
	TestnetSunsetHeight: 0, // simnet never sunsets
	ReduceMinDifficulty: true,
}

func init() {
	genesis := buildGenesisBlock(simNetGenesisTimestamp, simNetParams.InitialDifficulty, [wire.MinerAddressSize]byte{})
	simNetParams.GenesisBlock = genesis
	simNetParams.GenesisHash = genesis.HeaderHash()
}

// SimNetParams returns the parameter set used for local multi-node
// simulation and integration tests.
func SimNetParams() *Params {
	p := simNetParams
	return &p
}
