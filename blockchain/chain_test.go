// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"reflect"
	"testing"

	"github.com/visionx-network/visionx/chaincfg"
	"github.com/visionx-network/visionx/chainhash"
	"github.com/visionx-network/visionx/database"
	"github.com/visionx-network/visionx/pow"
	"github.com/visionx-network/visionx/wire"
)

// testDatasetWords is small enough that BuildDataset/Hash run instantly
// in a unit test; VisionX's mix loop masks indices by (len-1), so any
// power-of-two size produces a dataset Hash/Verify can run against.
const testDatasetWords = 1024

func newTestChain(t *testing.T) (*Chain, *chaincfg.Config) {
	t.Helper()

	store, err := database.Open(t.TempDir())
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ds := pow.NewManager(testDatasetWords, func(epoch uint64) *pow.Dataset {
		return pow.BuildDataset(epoch, pow.DeriveSeed(chainhash.Hash{}, epoch), testDatasetWords)
	})

	genesis := &wire.Block{Header: wire.BlockHeader{
		Version:    1,
		Height:     0,
		Timestamp:  1700000000,
		Difficulty: 1,
	}}
	genesis.ComputeTransactionsRoot()

	params := &chaincfg.Params{
		Name:         "testnet",
		GenesisBlock: genesis,
	}
	cfg := &chaincfg.Config{
		Tithe: chaincfg.TitheSplit{
			MinerBps:    chaincfg.DefaultTitheMinerBps,
			VaultBps:    chaincfg.DefaultTitheVaultBps,
			FundBps:     chaincfg.DefaultTitheFundBps,
			TreasuryBps: chaincfg.DefaultTitheTreasuryBps,
		},
		Foundation: chaincfg.FoundationAddresses{
			Vault:    testAddr(0xf0),
			Fund:     testAddr(0xf1),
			Treasury: testAddr(0xf2),
		},
	}

	c, err := New(params, cfg, store, ds)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, cfg
}

func testAddr(b byte) wire.Address {
	var a wire.Address
	a[0] = b
	return a
}

func testMinerAddress(b byte) [wire.MinerAddressSize]byte {
	var a [wire.MinerAddressSize]byte
	a[0] = b
	return a
}

// childBlock builds a candidate block extending parent, with a correct
// difficulty/merkle root for the chain's current rules but left for the
// caller to submit via AcceptBlock.
func childBlock(parentHash chainhash.Hash, parentHeight uint64, timestamp uint64, difficulty uint64, minerAddr byte) *wire.Block {
	b := &wire.Block{Header: wire.BlockHeader{
		Version:      1,
		Height:       parentHeight + 1,
		PrevHash:     parentHash,
		Timestamp:    timestamp,
		Difficulty:   difficulty,
		MinerAddress: testMinerAddress(minerAddr),
	}}
	b.ComputeTransactionsRoot()
	return b
}

func TestAcceptBlockExtendsTip(t *testing.T) {
	c, cfg := newTestChain(t)

	genesisHash := c.params.GenesisBlock.HeaderHash()
	block1 := childBlock(genesisHash, 0, 1700000002, c.NextDifficulty(), 0x01)

	result, err := c.AcceptBlock(block1, 1700000010, nil, 0)
	if err != nil {
		t.Fatalf("AcceptBlock() error = %v", err)
	}
	if result.SideChain || result.Reorged {
		t.Fatalf("AcceptBlock() result = %+v, want a plain tip extension", result)
	}

	gotHeight, gotHash := c.Tip()
	if gotHeight != 1 || gotHash != block1.HeaderHash() {
		t.Fatalf("Tip() = (%d, %s), want (1, %s)", gotHeight, gotHash, block1.HeaderHash())
	}

	got, err := c.GetBlock(block1.HeaderHash())
	if err != nil {
		t.Fatalf("GetBlock() error = %v", err)
	}
	if !reflect.DeepEqual(got.Header, block1.Header) {
		t.Fatalf("GetBlock() header = %+v, want %+v", got.Header, block1.Header)
	}

	minerAddr := MinerLedgerAddress(testMinerAddress(0x01))
	tithe, err := ApplyTithe(chaincfg.DefaultTitheAmount, cfg.Tithe)
	if err != nil {
		t.Fatalf("ApplyTithe() error = %v", err)
	}
	wantMiner := MiningReward(1) + tithe.Miner

	bal, err := c.store.Balance(minerAddr)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if bal.Lo != wantMiner || bal.Hi != 0 {
		t.Fatalf("miner balance = %+v, want %d", bal, wantMiner)
	}
}

func TestAcceptBlockRejectsDuplicate(t *testing.T) {
	c, _ := newTestChain(t)
	genesisHash := c.params.GenesisBlock.HeaderHash()
	block1 := childBlock(genesisHash, 0, 1700000002, c.NextDifficulty(), 0x01)

	if _, err := c.AcceptBlock(block1, 1700000010, nil, 0); err != nil {
		t.Fatalf("first AcceptBlock() error = %v", err)
	}
	if _, err := c.AcceptBlock(block1, 1700000010, nil, 0); err == nil {
		t.Fatal("second AcceptBlock() of the same block did not error")
	}
}

func TestAcceptBlockRejectsUnknownParent(t *testing.T) {
	c, _ := newTestChain(t)
	var unknown chainhash.Hash
	unknown[0] = 0xee
	block1 := childBlock(unknown, 0, 1700000002, 1, 0x01)

	if _, err := c.AcceptBlock(block1, 1700000010, nil, 0); err == nil {
		t.Fatal("AcceptBlock() with an unknown parent did not error")
	}
}

// TestAcceptBlockReorg builds two competing chains off genesis: A (one
// block) and B (two blocks). B never touches the active tip directly —
// it forks at genesis — but once its second block gives it more
// cumulative work than A, accepting it must trigger a reorg that
// disconnects A and reconnects both of B's blocks.
func TestAcceptBlockReorg(t *testing.T) {
	c, cfg := newTestChain(t)
	genesisHash := c.params.GenesisBlock.HeaderHash()

	blockA1 := childBlock(genesisHash, 0, 1700000002, c.NextDifficulty(), 0xA1)
	resA, err := c.AcceptBlock(blockA1, 1700000010, nil, 0)
	if err != nil {
		t.Fatalf("AcceptBlock(A1) error = %v", err)
	}
	if resA.SideChain || resA.Reorged {
		t.Fatalf("AcceptBlock(A1) result = %+v, want a plain tip extension", resA)
	}

	blockB1 := childBlock(genesisHash, 0, 1700000002, 1, 0xB1)
	resB1, err := c.AcceptBlock(blockB1, 1700000010, nil, 0)
	if err != nil {
		t.Fatalf("AcceptBlock(B1) error = %v", err)
	}
	if !resB1.SideChain {
		t.Fatalf("AcceptBlock(B1) result = %+v, want a side-chain acceptance (equal work to A1)", resB1)
	}

	blockB2 := childBlock(blockB1.HeaderHash(), 1, 1700000004, 1, 0xB2)
	resB2, err := c.AcceptBlock(blockB2, 1700000010, nil, 0)
	if err != nil {
		t.Fatalf("AcceptBlock(B2) error = %v", err)
	}
	if !resB2.Reorged || resB2.DisconnectedBlocks != 1 {
		t.Fatalf("AcceptBlock(B2) result = %+v, want a 1-block reorg", resB2)
	}

	height, hash := c.Tip()
	if height != 2 || hash != blockB2.HeaderHash() {
		t.Fatalf("Tip() = (%d, %s), want (2, %s)", height, hash, blockB2.HeaderHash())
	}

	gotB1, err := c.GetBlockByHeight(1)
	if err != nil {
		t.Fatalf("GetBlockByHeight(1) error = %v", err)
	}
	if gotB1.HeaderHash() != blockB1.HeaderHash() {
		t.Fatalf("GetBlockByHeight(1) = %s, want %s (B1)", gotB1.HeaderHash(), blockB1.HeaderHash())
	}

	minerA1 := MinerLedgerAddress(testMinerAddress(0xA1))
	balA1, err := c.store.Balance(minerA1)
	if err != nil {
		t.Fatalf("Balance(A1 miner) error = %v", err)
	}
	if balA1.Lo != 0 || balA1.Hi != 0 {
		t.Fatalf("A1 miner balance after reorg = %+v, want 0 (disconnected)", balA1)
	}

	tithe, err := ApplyTithe(chaincfg.DefaultTitheAmount, cfg.Tithe)
	if err != nil {
		t.Fatalf("ApplyTithe() error = %v", err)
	}
	wantMiner := MiningReward(1) + tithe.Miner

	for _, b := range []byte{0xB1, 0xB2} {
		addr := MinerLedgerAddress(testMinerAddress(b))
		bal, err := c.store.Balance(addr)
		if err != nil {
			t.Fatalf("Balance(%x) error = %v", b, err)
		}
		if bal.Lo != wantMiner || bal.Hi != 0 {
			t.Fatalf("miner %x balance after reorg = %+v, want %d", b, bal, wantMiner)
		}
	}

	vaultBal, err := c.store.Balance(cfg.Foundation.Vault)
	if err != nil {
		t.Fatalf("Balance(vault) error = %v", err)
	}
	wantVault := tithe.Vault * 2 // B1 and B2 both credited; A1's share was reversed.
	if vaultBal.Lo != wantVault || vaultBal.Hi != 0 {
		t.Fatalf("vault balance after reorg = %+v, want %d", vaultBal, wantVault)
	}
}

func TestAcceptBlockRejectsBadDifficulty(t *testing.T) {
	c, _ := newTestChain(t)
	genesisHash := c.params.GenesisBlock.HeaderHash()
	block1 := childBlock(genesisHash, 0, 1700000002, c.NextDifficulty()+1, 0x01)

	if _, err := c.AcceptBlock(block1, 1700000010, nil, 0); err == nil {
		t.Fatal("AcceptBlock() with wrong difficulty did not error")
	}
}
