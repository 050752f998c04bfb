// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/visionx-network/visionx/chaincfg"

// Phase identifies which consensus regime a block at a given height
// operates under.
type Phase int

const (
	// PhaseMining covers every height below chaincfg.MaxMiningBlock:
	// blocks are produced by the VisionX PoW miner manager and carry
	// the halving mining reward plus tithe.
	PhaseMining Phase = iota

	// PhaseStaking covers chaincfg.MaxMiningBlock and every later
	// height: blocks are produced by deed holders and carry the
	// staking reward plus fee distribution instead of a mining reward.
	PhaseStaking
)

func (p Phase) String() string {
	if p == PhaseStaking {
		return "staking"
	}
	return "mining"
}

// PhaseForHeight returns which phase governs the block at height. The
// transition is unconditional: a block at exactly MaxMiningBlock is
// already in the Staking phase (Open Question decision, see
// DESIGN.md).
func PhaseForHeight(height uint64) Phase {
	if height >= chaincfg.MaxMiningBlock {
		return PhaseStaking
	}
	return PhaseMining
}

// IsCashGenesisHeight reports whether height is the mainnet-only
// height at which the one-shot CASH airdrop table applies.
func IsCashGenesisHeight(net string, height uint64) bool {
	return net == "mainnet" && height == chaincfg.CashGenesisHeight
}

// CheckTestnetSunset enforces the testnet-only height at which the
// chain refuses to extend further on the same chain-data directory
//. It is a no-op on every network but testnet.
func CheckTestnetSunset(net string, height, sunsetHeight uint64) error {
	if net != "testnet" || sunsetHeight == 0 {
		return nil
	}
	if height >= sunsetHeight {
		return ruleError(ErrTestnetSunset, "testnet has reached its configured sunset height")
	}
	return nil
}
