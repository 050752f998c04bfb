// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math/big"

	"github.com/visionx-network/visionx/amount"
	"github.com/visionx-network/visionx/chainhash"
	"github.com/visionx-network/visionx/database"
	"github.com/visionx-network/visionx/pow"
	"github.com/visionx-network/visionx/wire"
)

// blockWork returns a block's contribution to cumulative chain work.
// VisionX's target is the simple inverse of difficulty
// (DifficultyToTarget), so difficulty is already proportional to work
// and needs no further transformation before summing.
func blockWork(difficulty uint64) *big.Int {
	return new(big.Int).SetUint64(difficulty)
}

// addWork folds difficulty into a big-endian cumulative-work
// accumulator, as stored in database.BlockIndexEntry.CumulativeWork.
func addWork(cumulative [32]byte, difficulty uint64) [32]byte {
	sum := new(big.Int).SetBytes(cumulative[:])
	sum.Add(sum, blockWork(difficulty))
	var out [32]byte
	b := sum.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// reorgAccumulator batches balance deltas across every block a reorg
// touches so that an address credited or debited by more than one of
// those blocks sees the net effect, rather than losing earlier deltas
// to a stale re-read from the database (LevelDB batches are not
// visible to reads until committed).
type reorgAccumulator struct {
	store    *database.Store
	balances map[wire.Address]amount.Uint128
}

func newReorgAccumulator(store *database.Store) *reorgAccumulator {
	return &reorgAccumulator{store: store, balances: make(map[wire.Address]amount.Uint128)}
}

func (a *reorgAccumulator) get(addr wire.Address) (amount.Uint128, error) {
	if v, ok := a.balances[addr]; ok {
		return v, nil
	}
	v, err := a.store.Balance(addr)
	if err != nil {
		return amount.Uint128{}, err
	}
	a.balances[addr] = v
	return v, nil
}

func (a *reorgAccumulator) credit(addr wire.Address, delta uint64) error {
	cur, err := a.get(addr)
	if err != nil {
		return err
	}
	a.balances[addr] = cur.Add(amount.FromUint64(delta))
	return nil
}

func (a *reorgAccumulator) debit(addr wire.Address, delta uint64) error {
	cur, err := a.get(addr)
	if err != nil {
		return err
	}
	a.balances[addr] = cur.Sub(amount.FromUint64(delta))
	return nil
}

func (a *reorgAccumulator) flush(batch *database.Batch) {
	for addr, bal := range a.balances {
		batch.SetBalance(addr, bal)
	}
}

// commonAncestor walks back from two block-index entries by hash until
// it finds the block they both descend from, returning its height and
// hash.
func (c *Chain) commonAncestor(aHash chainhash.Hash, aHeight uint64, bHash chainhash.Hash, bHeight uint64) (uint64, chainhash.Hash, error) {
	for aHeight > bHeight {
		e, err := c.store.BlockIndexEntry(aHash)
		if err != nil {
			return 0, chainhash.Hash{}, err
		}
		aHash, aHeight = e.PrevHash, aHeight-1
	}
	for bHeight > aHeight {
		e, err := c.store.BlockIndexEntry(bHash)
		if err != nil {
			return 0, chainhash.Hash{}, err
		}
		bHash, bHeight = e.PrevHash, bHeight-1
	}
	for aHash != bHash {
		ea, err := c.store.BlockIndexEntry(aHash)
		if err != nil {
			return 0, chainhash.Hash{}, err
		}
		eb, err := c.store.BlockIndexEntry(bHash)
		if err != nil {
			return 0, chainhash.Hash{}, err
		}
		aHash, aHeight = ea.PrevHash, aHeight-1
		bHash, bHeight = eb.PrevHash, bHeight-1
	}
	return aHeight, aHash, nil
}

// ancestryPath returns the hashes from forkHeight+1 up to newTipHeight
// along newTipHash's ancestry, oldest first: the blocks a reorg must
// reconnect, in application order.
func (c *Chain) ancestryPath(newTipHash chainhash.Hash, newTipHeight, forkHeight uint64) ([]chainhash.Hash, error) {
	path := make([]chainhash.Hash, newTipHeight-forkHeight)
	hash := newTipHash
	for i := len(path) - 1; i >= 0; i-- {
		path[i] = hash
		e, err := c.store.BlockIndexEntry(hash)
		if err != nil {
			return nil, err
		}
		hash = e.PrevHash
	}
	return path, nil
}

// reorgOutcome reports what performReorg committed.
type reorgOutcome struct {
	disconnected int
	connected    int
}

// performReorg switches the active chain from its current tip onto
// newTipHash, by disconnecting blocks down to the common ancestor and
// reconnecting the new chain's blocks back up, replaying each block's
// recorded undo/redo data (database.BlockIndexEntry.Credits/Minted,
// written at the block's original acceptance) rather than re-running
// consensus logic. Everything lands in one atomic batch; the in-memory
// tip only advances after a successful commit.
func (c *Chain) performReorg(newTipHash chainhash.Hash, newTipHeight uint64) (*reorgOutcome, error) {
	forkHeight, forkHash, err := c.commonAncestor(c.tipHash, c.tipHeight, newTipHash, newTipHeight)
	if err != nil {
		return nil, fmt.Errorf("blockchain: locating common ancestor: %w", err)
	}
	if err := ValidateReorgDepth(c.tipHeight, forkHeight); err != nil {
		return nil, err
	}

	batch := c.store.NewBatch()
	acc := newReorgAccumulator(c.store)
	supply, err := c.store.TokenomicsSupply()
	if err != nil {
		return nil, err
	}

	hash := c.tipHash
	disconnected := 0
	for hash != forkHash {
		entry, err := c.store.BlockIndexEntry(hash)
		if err != nil {
			return nil, err
		}
		if entry.Height == 0 {
			return nil, fmt.Errorf("blockchain: reorg reached genesis without finding the fork point")
		}
		for addr, amt := range entry.Credits {
			if err := acc.debit(addr, amt); err != nil {
				return nil, err
			}
		}
		supply = supply.Sub(amount.FromUint64(entry.Minted))
		batch.DeleteHeightIndex(entry.Height)

		parent, err := c.store.BlockIndexEntry(entry.PrevHash)
		if err != nil {
			return nil, err
		}
		batch.SetChainTip(parent.Height, entry.PrevHash)
		batch.SetChainDifficulty(parent.Difficulty)
		batch.SetCashGenesisFlag(parent.CashGenesisApplied)

		hash = entry.PrevHash
		disconnected++
	}

	path, err := c.ancestryPath(newTipHash, newTipHeight, forkHeight)
	if err != nil {
		return nil, err
	}
	for _, h := range path {
		entry, err := c.store.BlockIndexEntry(h)
		if err != nil {
			return nil, err
		}
		for addr, amt := range entry.Credits {
			if err := acc.credit(addr, amt); err != nil {
				return nil, err
			}
		}
		supply = supply.Add(amount.FromUint64(entry.Minted))
		batch.SetHeightIndex(entry.Height, h)
		batch.SetChainTip(entry.Height, h)
		batch.SetChainDifficulty(entry.Difficulty)
		batch.SetCashGenesisFlag(entry.CashGenesisApplied)
	}

	acc.flush(batch)
	batch.SetTokenomicsSupply(supply)

	if err := c.store.Commit(batch); err != nil {
		return nil, err
	}

	c.tipHeight = newTipHeight
	c.tipHash = newTipHash
	if err := c.loadHistory(); err != nil {
		return nil, err
	}
	c.cashGenesisApplied, err = c.store.CashGenesisDone()
	if err != nil {
		return nil, err
	}

	return &reorgOutcome{disconnected: disconnected, connected: len(path)}, nil
}

// pow is only referenced for BEGreater; alias kept local to this file
// so the cumulative-work comparison reads naturally at the call site.
var workGreater = pow.BEGreater
