// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/visionx-network/visionx/chaincfg"
	"github.com/visionx-network/visionx/wire"
)

func TestMiningRewardHalves(t *testing.T) {
	tests := []struct {
		height uint64
		want   uint64
	}{
		{0, chaincfg.BaseMiningReward},
		{chaincfg.HalvingInterval - 1, chaincfg.BaseMiningReward},
		{chaincfg.HalvingInterval, chaincfg.BaseMiningReward / 2},
		{chaincfg.HalvingInterval * 2, chaincfg.BaseMiningReward / 4},
		{chaincfg.HalvingInterval * 64, 0},
	}
	for _, tt := range tests {
		if got := MiningReward(tt.height); got != tt.want {
			t.Errorf("MiningReward(%d) = %d, want %d\n%s", tt.height, got, tt.want, spew.Sdump(tt))
		}
	}
}

func TestApplyTitheSplit(t *testing.T) {
	split := chaincfg.TitheSplit{
		MinerBps:    chaincfg.DefaultTitheMinerBps,
		VaultBps:    chaincfg.DefaultTitheVaultBps,
		FundBps:     chaincfg.DefaultTitheFundBps,
		TreasuryBps: chaincfg.DefaultTitheTreasuryBps,
	}
	bt, err := ApplyTithe(chaincfg.DefaultTitheAmount, split)
	if err != nil {
		t.Fatalf("ApplyTithe() error = %v", err)
	}

	total := bt.Miner + bt.Vault + bt.Fund + bt.Treasury
	if total != chaincfg.DefaultTitheAmount {
		t.Fatalf("tithe breakdown sums to %d, want %d", total, chaincfg.DefaultTitheAmount)
	}
	if bt.Miner != 0 {
		t.Errorf("bt.Miner = %d, want 0", bt.Miner)
	}
}

func TestApplyTitheRejectsBadSplit(t *testing.T) {
	bad := chaincfg.TitheSplit{MinerBps: 100, VaultBps: 100, FundBps: 100, TreasuryBps: 100}
	if _, err := ApplyTithe(1000, bad); err == nil {
		t.Fatal("ApplyTithe() with bad split did not error")
	}
}

func TestDistributeStakingPayoutEvenSplit(t *testing.T) {
	var a, b, c, vault wire.Address
	a[0], b[0], c[0], vault[0] = 1, 2, 3, 0xff

	credits := DistributeStakingPayout(100, []wire.Address{a, b, c}, vault)
	if credits[a] != 33 || credits[b] != 33 || credits[c] != 33 {
		t.Fatalf("unexpected per-holder credits: %v", credits)
	}
	if credits[vault] != 1 {
		t.Fatalf("vault dust credit = %d, want 1", credits[vault])
	}
}

func TestDistributeStakingPayoutNoHolders(t *testing.T) {
	var vault wire.Address
	vault[0] = 0xff

	credits := DistributeStakingPayout(500, nil, vault)
	if credits[vault] != 500 {
		t.Fatalf("vault credit = %d, want 500", credits[vault])
	}
}

func TestApplyCashGenesisReplayGuard(t *testing.T) {
	ledger := []*chaincfg.CashPayout{{Amount: 100}}
	if _, err := ApplyCashGenesis(true, ledger); err == nil {
		t.Fatal("ApplyCashGenesis() with alreadyApplied=true did not error")
	}

	credits, err := ApplyCashGenesis(false, ledger)
	if err != nil {
		t.Fatalf("ApplyCashGenesis() error = %v", err)
	}
	if len(credits) != 1 {
		t.Fatalf("len(credits) = %d, want 1", len(credits))
	}
}

func TestMinerLedgerAddressZeroExtends(t *testing.T) {
	var miner [wire.MinerAddressSize]byte
	for i := range miner {
		miner[i] = byte(i + 1)
	}
	addr := MinerLedgerAddress(miner)
	for i := 0; i < wire.MinerAddressSize; i++ {
		if addr[i] != miner[i] {
			t.Fatalf("addr[%d] = %d, want %d", i, addr[i], miner[i])
		}
	}
	for i := wire.MinerAddressSize; i < len(addr); i++ {
		if addr[i] != 0 {
			t.Fatalf("addr[%d] = %d, want 0 padding", i, addr[i])
		}
	}
}
