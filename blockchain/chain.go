// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/visionx-network/visionx/amount"
	"github.com/visionx-network/visionx/chaincfg"
	"github.com/visionx-network/visionx/chainhash"
	"github.com/visionx-network/visionx/database"
	"github.com/visionx-network/visionx/pow"
	"github.com/visionx-network/visionx/wire"
)

// historyWindow is how many trailing (timestamp, difficulty) samples
// the orchestrator keeps cached in memory for the LWMA-120 and
// median-time-past checks, avoiding a database round trip per sample
// on every new block.
const historyWindow = LWMAWindow + 1

// Chain is the single coordinating object over validation, the reward
// engine, the dataset manager, and persistence: every other package
// that needs a consistent view of chain state goes through it. Its
// lock-guarded mutable-state shape follows the same chainLock
// discipline blockchain.BlockChain uses.
type Chain struct {
	mu     sync.RWMutex
	params *chaincfg.Params
	cfg    *chaincfg.Config
	store  *database.Store
	ds     *pow.Manager

	tipHeight uint64
	tipHash   chainhash.Hash
	history   []DifficultySample // oldest first, capped at historyWindow

	cashGenesisApplied bool
}

// New opens (or initializes, if empty) a Chain over store using params
// and cfg. If the store has no recorded tip, the network's genesis
// block is written as height 0.
func New(params *chaincfg.Params, cfg *chaincfg.Config, store *database.Store, ds *pow.Manager) (*Chain, error) {
	c := &Chain{params: params, cfg: cfg, store: store, ds: ds}

	height, hash, err := store.ChainTip()
	if err != nil {
		return nil, err
	}
	if hash == (chainhash.Hash{}) {
		if err := c.initGenesis(); err != nil {
			return nil, err
		}
	} else {
		c.tipHeight = height
		c.tipHash = hash
		if err := c.loadHistory(); err != nil {
			return nil, err
		}
		c.cashGenesisApplied, err = store.CashGenesisDone()
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Chain) initGenesis() error {
	genesis := c.params.GenesisBlock
	hash := genesis.HeaderHash()

	index := &database.BlockIndexEntry{
		Height:             0,
		PrevHash:           genesis.Header.PrevHash,
		Difficulty:         genesis.Header.Difficulty,
		Timestamp:          genesis.Header.Timestamp,
		CumulativeWork:     addWork([32]byte{}, genesis.Header.Difficulty),
		CashGenesisApplied: false,
	}
	if err := c.store.PutBlock(0, hash, genesis, index); err != nil {
		return err
	}
	if err := c.store.SetChainTip(0, hash); err != nil {
		return err
	}
	if err := c.store.SetChainDifficulty(genesis.Header.Difficulty); err != nil {
		return err
	}
	c.tipHeight = 0
	c.tipHash = hash
	c.history = []DifficultySample{{Timestamp: genesis.Header.Timestamp, Difficulty: genesis.Header.Difficulty}}
	return nil
}

func (c *Chain) loadHistory() error {
	var samples []DifficultySample
	start := uint64(0)
	if c.tipHeight+1 > historyWindow {
		start = c.tipHeight + 1 - historyWindow
	}
	for h := start; h <= c.tipHeight; h++ {
		hash, err := c.store.BlockHashAtHeight(h)
		if err != nil {
			return err
		}
		entry, err := c.store.BlockIndexEntry(hash)
		if err != nil {
			return err
		}
		samples = append(samples, DifficultySample{Timestamp: entry.Timestamp, Difficulty: entry.Difficulty})
	}
	c.history = samples
	return nil
}

// windowEndingAt returns the trailing (timestamp, difficulty) samples
// ending at the block identified by (parentHash, parentHeight),
// suitable for NextDifficulty/recentTimestampsOf. Blocks that extend
// the current tip reuse the in-memory cache directly; anything else
// (a side-chain fork point) walks the block index by hash.
func (c *Chain) windowEndingAt(parentHash chainhash.Hash, parentHeight uint64) ([]DifficultySample, error) {
	if parentHeight == c.tipHeight && parentHash == c.tipHash {
		return c.history, nil
	}

	n := historyWindow
	if parentHeight+1 < uint64(n) {
		n = int(parentHeight) + 1
	}
	samples := make([]DifficultySample, n)
	hash := parentHash
	for i := n - 1; i >= 0; i-- {
		entry, err := c.store.BlockIndexEntry(hash)
		if err != nil {
			return nil, err
		}
		samples[i] = DifficultySample{Timestamp: entry.Timestamp, Difficulty: entry.Difficulty}
		hash = entry.PrevHash
	}
	return samples, nil
}

// Tip returns the current best block's height and header hash.
func (c *Chain) Tip() (uint64, chainhash.Hash) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tipHeight, c.tipHash
}

// GetBlock returns the full block stored under hash, whether or not it
// currently sits on the active chain.
func (c *Chain) GetBlock(hash chainhash.Hash) (*wire.Block, error) {
	return c.store.Block(hash)
}

// GetBlockByHeight returns the active chain's block at height.
func (c *Chain) GetBlockByHeight(height uint64) (*wire.Block, error) {
	hash, err := c.store.BlockHashAtHeight(height)
	if err != nil {
		return nil, err
	}
	return c.store.Block(hash)
}

// NextDifficulty returns the difficulty the next block (at tipHeight+1)
// must carry, per the LWMA-120 controller.
func (c *Chain) NextDifficulty() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NextDifficulty(c.history)
}

// EstimateNextDifficulty previews the LWMA-120 retarget for the block
// after tip without mutating any state, for dashboards and other
// external tooling that want to preview the next difficulty.
func (c *Chain) EstimateNextDifficulty() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NextDifficulty(c.history)
}

// Diagnostics is a read-only snapshot of chain-orchestrator state for
// consumption by internal/metrics and other observability tooling; it
// holds no consensus-affecting information of its own.
type Diagnostics struct {
	Height       uint64
	Hash         chainhash.Hash
	Difficulty   uint64
	Phase        Phase
	BlockTimeEMA float64
	TotalSupply  amount.Uint128
}

// blockTimeEMAAlpha smooths the block-time diagnostic the same way
// cpuminer.HashrateSampler smooths hashrate: exponential decay rather
// than a trailing window, so the estimate reacts to recent history
// without needing to retain one.
const blockTimeEMAAlpha = 0.2

// Snapshot builds a Diagnostics snapshot of current chain state.
func (c *Chain) Snapshot() Diagnostics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ema float64
	count := 0
	for i := 1; i < len(c.history); i++ {
		delta := float64(c.history[i].Timestamp) - float64(c.history[i-1].Timestamp)
		if count == 0 {
			ema = delta
		} else {
			ema = blockTimeEMAAlpha*delta + (1-blockTimeEMAAlpha)*ema
		}
		count++
	}

	supply, _ := c.store.TokenomicsSupply()
	difficulty, _ := c.store.ChainDifficulty()

	return Diagnostics{
		Height:       c.tipHeight,
		Hash:         c.tipHash,
		Difficulty:   difficulty,
		Phase:        PhaseForHeight(c.tipHeight),
		BlockTimeEMA: ema,
		TotalSupply:  supply,
	}
}

// recentTimestampsOf returns up to MTPSpan trailing timestamps, oldest
// first, for the median-time-past check.
func recentTimestampsOf(history []DifficultySample) []uint64 {
	var out []uint64
	start := 0
	if len(history) > MTPSpan {
		start = len(history) - MTPSpan
	}
	for _, s := range history[start:] {
		out = append(out, s.Timestamp)
	}
	return out
}

// AcceptResult reports the outcome of a successful AcceptBlock call,
// including the ledger credits it applied (empty for a side-chain
// block that did not become active) and whether accepting it
// triggered a reorg.
type AcceptResult struct {
	Height             uint64
	Hash               chainhash.Hash
	Phase              Phase
	Credits            map[wire.Address]uint64
	SideChain          bool
	Reorged            bool
	DisconnectedBlocks int
}

// AcceptBlock validates block against every consensus rule this
// package enforces (difficulty, PoW, timestamp, reorg depth, height
// and lineage), applies its reward/tithe or staking payout, persists
// the result, and advances the tip — or, if block extends a competing
// chain with more cumulative work than the active one, reorganizes
// onto it. It is the single entry point the block submitter and the
// P2P block-relay path both call.
func (c *Chain) AcceptBlock(block *wire.Block, now uint64, deedHolders []wire.Address, fees uint64) (*AcceptResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := &block.Header
	hash := h.HeaderHash()

	if _, err := c.store.BlockIndexEntry(hash); err == nil {
		return nil, ruleError(ErrDuplicateBlock, "block already accepted")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	parent, err := c.store.BlockIndexEntry(h.PrevHash)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ruleError(ErrMissingParent, "block prev_hash references an unknown parent")
		}
		return nil, err
	}

	if err := ValidateHeightAndLineage(h.Height, parent.Height, true); err != nil {
		return nil, err
	}

	window, err := c.windowEndingAt(h.PrevHash, parent.Height)
	if err != nil {
		return nil, err
	}

	wantDiff := NextDifficulty(window)
	if h.Difficulty != wantDiff {
		return nil, ruleError(ErrInvalidDifficultyBits,
			fmt.Sprintf("block difficulty %d does not match required %d", h.Difficulty, wantDiff))
	}

	if err := ValidateTimestamp(h.Timestamp, now, recentTimestampsOf(window)); err != nil {
		return nil, err
	}

	if got := block.ComputeTransactionsRoot(); got != h.TransactionsRoot {
		return nil, ruleError(ErrBadMerkleRoot, "transactions_root does not match recomputed merkle root")
	}

	epoch := pow.EpochForHeight(h.Height)
	ds := c.ds.Current(epoch)
	target := DifficultyToTarget(h.Difficulty)
	solved, _ := pow.Verify(h.Serialize(), ds, target)
	if !solved {
		return nil, ruleError(ErrHighHash, "PoW digest does not meet the target implied by difficulty")
	}

	if err := CheckTestnetSunset(c.params.Name, h.Height, c.cfg.TestnetSunsetHeight); err != nil {
		return nil, err
	}

	credits, err := c.applyRewardsFor(h, deedHolders, fees, parent.CashGenesisApplied)
	if err != nil {
		return nil, err
	}

	var minted uint64
	for _, amt := range credits {
		minted += amt
	}
	cashGenesisNowApplied := parent.CashGenesisApplied || IsCashGenesisHeight(c.params.Name, h.Height)

	index := &database.BlockIndexEntry{
		Height:             h.Height,
		PrevHash:           h.PrevHash,
		Difficulty:         h.Difficulty,
		Timestamp:          h.Timestamp,
		CumulativeWork:     addWork(parent.CumulativeWork, h.Difficulty),
		Credits:            credits,
		Minted:             minted,
		CashGenesisApplied: cashGenesisNowApplied,
	}

	// The block body and its index entry are persisted unconditionally
	// so it stays available by hash even if it never becomes (or later
	// stops being) the active tip.
	batch := c.store.NewBatch()
	if err := batch.PutBlock(hash, block); err != nil {
		return nil, err
	}
	batch.PutBlockIndexEntry(hash, index)

	tipEntry, err := c.store.BlockIndexEntry(c.tipHash)
	if err != nil {
		return nil, err
	}

	extendsTip := h.PrevHash == c.tipHash
	if !extendsTip && !workGreater(index.CumulativeWork, tipEntry.CumulativeWork) {
		if err := c.store.Commit(batch); err != nil {
			return nil, err
		}
		return &AcceptResult{Height: h.Height, Hash: hash, Phase: PhaseForHeight(h.Height), SideChain: true}, nil
	}

	if extendsTip {
		batch.SetHeightIndex(h.Height, hash)
		batch.SetChainTip(h.Height, hash)
		batch.SetChainDifficulty(h.Difficulty)
		batch.SetCashGenesisFlag(cashGenesisNowApplied)

		for addr, amt := range credits {
			cur, err := c.store.Balance(addr)
			if err != nil {
				return nil, err
			}
			batch.SetBalance(addr, cur.Add(amount.FromUint64(amt)))
		}
		if minted > 0 {
			supply, err := c.store.TokenomicsSupply()
			if err != nil {
				return nil, err
			}
			batch.SetTokenomicsSupply(supply.Add(amount.FromUint64(minted)))
		}

		if err := c.store.Commit(batch); err != nil {
			return nil, err
		}

		c.tipHeight = h.Height
		c.tipHash = hash
		c.cashGenesisApplied = cashGenesisNowApplied
		c.history = append(c.history, DifficultySample{Timestamp: h.Timestamp, Difficulty: h.Difficulty})
		if len(c.history) > historyWindow {
			c.history = c.history[len(c.history)-historyWindow:]
		}
		if h.Height%chaincfg.EpochBlocks == 0 {
			c.ds.PrepareNext(pow.EpochForHeight(h.Height) + 1)
		}

		return &AcceptResult{Height: h.Height, Hash: hash, Phase: PhaseForHeight(h.Height), Credits: credits}, nil
	}

	// block extends a competing chain whose cumulative work now exceeds
	// the active chain's: commit its own body/index entry first so
	// performReorg can read it back by hash, then switch the active
	// chain onto it.
	if err := c.store.Commit(batch); err != nil {
		return nil, err
	}
	outcome, err := c.performReorg(hash, h.Height)
	if err != nil {
		return nil, err
	}
	log.Infof("reorganized chain: disconnected %d block(s), connected %d block(s), new tip %s at height %d",
		outcome.disconnected, outcome.connected, hash, h.Height)

	if h.Height%chaincfg.EpochBlocks == 0 {
		c.ds.PrepareNext(pow.EpochForHeight(h.Height) + 1)
	}

	return &AcceptResult{
		Height: h.Height, Hash: hash, Phase: PhaseForHeight(h.Height), Credits: credits,
		Reorged: true, DisconnectedBlocks: outcome.disconnected,
	}, nil
}

// applyRewardsFor computes the ledger credits block h earns, given
// whether the CASH genesis ledger has already been applied as of the
// chain it extends (which may be a side chain, so this cannot simply
// read Chain.cashGenesisApplied).
func (c *Chain) applyRewardsFor(h *wire.BlockHeader, deedHolders []wire.Address, fees uint64, cashGenesisAlreadyApplied bool) (map[wire.Address]uint64, error) {
	credits := make(map[wire.Address]uint64)

	switch PhaseForHeight(h.Height) {
	case PhaseMining:
		reward := MiningReward(h.Height)
		minerAddr := MinerLedgerAddress(h.MinerAddress)
		credits[minerAddr] += reward

		tithe, err := ApplyTithe(uint64(chaincfg.DefaultTitheAmount), c.cfg.Tithe)
		if err != nil {
			return nil, err
		}
		credits[minerAddr] += tithe.Miner
		credits[c.cfg.Foundation.Vault] += tithe.Vault
		credits[c.cfg.Foundation.Fund] += tithe.Fund
		credits[c.cfg.Foundation.Treasury] += tithe.Treasury

	case PhaseStaking:
		total := uint64(chaincfg.DefaultBaseStakingReward) + fees
		for addr, amt := range DistributeStakingPayout(total, deedHolders, c.cfg.Foundation.Vault) {
			credits[addr] += amt
		}
	}

	if IsCashGenesisHeight(c.params.Name, h.Height) {
		cashCredits, err := ApplyCashGenesis(cashGenesisAlreadyApplied, chaincfg.CashGenesisLedgerMainNet)
		if err != nil {
			return nil, err
		}
		for addr, amt := range cashCredits {
			credits[addr] += amt
		}
	}

	return credits, nil
}
