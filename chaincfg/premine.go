// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "github.com/visionx-network/visionx/wire"

// CashPayout is one credit applied by the one-shot CASH genesis event
//: at height CashGenesisHeight on mainnet, and only once,
// every address in the table below is credited the listed amount before
// ordinary mining rewards for that block are applied.
type CashPayout struct {
	Address wire.Address
	Amount  uint64 // base units at 8 decimals
}

// CashGenesisLedgerMainNet is the CASH airdrop table applied on mainnet.
// It starts empty: production allocations are supplied by ops tooling
// before the binary ships a release, populated out of band from this
// file's placeholder.
var CashGenesisLedgerMainNet = []*CashPayout{}

// CashGenesisLedgerTestNet is the CASH airdrop table applied on testnet,
// kept separate so test allocations never leak into a mainnet build.
var CashGenesisLedgerTestNet = []*CashPayout{}

// CashGenesisLedgerSimNet is the CASH airdrop table applied on simnet,
// typically populated by integration tests that need deterministic
// starting balances.
var CashGenesisLedgerSimNet = []*CashPayout{}

// TotalCashGenesis sums a ledger's payouts.
func TotalCashGenesis(ledger []*CashPayout) uint64 {
	var total uint64
	for _, p := range ledger {
		total += p.Amount
	}
	return total
}
