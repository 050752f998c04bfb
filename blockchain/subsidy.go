// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/visionx-network/visionx/chaincfg"
	"github.com/visionx-network/visionx/wire"
)

// MiningReward returns the base per-block mining reward at height,
// halving every chaincfg.HalvingInterval blocks until it reaches zero.
// The halving loop mirrors a standard reduction-interval walk over
// subsidy eras, simplified since VisionX halves by a flat right shift
// rather than a ratio multiply/divide.
func MiningReward(height uint64) uint64 {
	era := height / chaincfg.HalvingInterval
	if era >= 64 {
		return 0
	}
	return uint64(chaincfg.BaseMiningReward) >> era
}

// TitheBreakdown is the per-block tithe split credited alongside the
// mining reward.
type TitheBreakdown struct {
	Miner    uint64
	Vault    uint64
	Fund     uint64
	Treasury uint64
}

// ApplyTithe splits titheAmount according to split's basis-point
// ratios. Any remainder left by integer-division rounding is credited
// to the vault share, matching the convention used for dust in
// DistributeStakingPayout.
func ApplyTithe(titheAmount uint64, split chaincfg.TitheSplit) (TitheBreakdown, error) {
	if split.Sum() != chaincfg.TitheBpsTotal {
		str := fmt.Sprintf("tithe split sums to %d bps, want %d", split.Sum(), chaincfg.TitheBpsTotal)
		return TitheBreakdown{}, ruleError(ErrTitheSplitInvalid, str)
	}

	bt := TitheBreakdown{
		Miner:    titheAmount * uint64(split.MinerBps) / chaincfg.TitheBpsTotal,
		Fund:     titheAmount * uint64(split.FundBps) / chaincfg.TitheBpsTotal,
		Treasury: titheAmount * uint64(split.TreasuryBps) / chaincfg.TitheBpsTotal,
	}
	vaultBase := titheAmount * uint64(split.VaultBps) / chaincfg.TitheBpsTotal
	allocated := bt.Miner + vaultBase + bt.Fund + bt.Treasury
	bt.Vault = vaultBase + (titheAmount - allocated)
	return bt, nil
}

// MinerLedgerAddress zero-extends a header's 20-byte miner_address into
// the 32-byte wire.Address used throughout the ledger, reconciling the
// two widths (see DESIGN.md).
func MinerLedgerAddress(minerAddress [wire.MinerAddressSize]byte) wire.Address {
	var addr wire.Address
	copy(addr[:], minerAddress[:])
	return addr
}

// DistributeStakingPayout splits a staking-phase block's total payout
// (base staking reward plus collected fees) evenly across every
// deed-holding address, crediting whatever integer-division dust is
// left over to the vault. An empty holder list credits
// the whole payout to the vault.
func DistributeStakingPayout(total uint64, deedHolders []wire.Address, vault wire.Address) map[wire.Address]uint64 {
	credits := make(map[wire.Address]uint64, len(deedHolders)+1)
	if len(deedHolders) == 0 {
		credits[vault] += total
		return credits
	}

	n := uint64(len(deedHolders))
	share := total / n
	dust := total - share*n

	for _, addr := range deedHolders {
		credits[addr] += share
	}
	credits[vault] += dust
	return credits
}

// ApplyCashGenesis returns the per-address credits for the one-shot
// CASH genesis ledger, or ErrCashGenesisReplay if it has already been
// applied on this chain. The ledger's own per-entry structural
// validation against an expected ledger is the caller's responsibility
// once the CASH credits are turned into an actual coinbase-style
// transaction by the transaction subsystem; this function only
// computes the consensus-mandated credit amounts.
func ApplyCashGenesis(alreadyApplied bool, ledger []*chaincfg.CashPayout) (map[wire.Address]uint64, error) {
	if alreadyApplied {
		return nil, ruleError(ErrCashGenesisReplay, "CASH genesis ledger already applied on this chain")
	}
	credits := make(map[wire.Address]uint64, len(ledger))
	for _, payout := range ledger {
		credits[payout.Address] += payout.Amount
	}
	return credits, nil
}
