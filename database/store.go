// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database implements the VisionX chain-state key-value schema
// over github.com/syndtr/goleveldb.
package database

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/visionx-network/visionx/amount"
	"github.com/visionx-network/visionx/chainhash"
	"github.com/visionx-network/visionx/wire"
)

// ErrNotFound is returned when a lookup key is absent.
var ErrNotFound = errors.New("database: key not found")

// Store is the single LevelDB handle every chain-state accessor uses.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) the LevelDB instance at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	log.Infof("opened chain-state database at %s", path)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// key-space prefixes.
const (
	prefixBlockHeight   = "blocks:height:"
	prefixBlockHash     = "blocks:"
	prefixBlockIndex    = "blockindex:"
	prefixTx            = "tx:"
	prefixBalance       = "balance:"
	prefixNonce         = "nonce:"
	prefixDeed          = "deed:"
	prefixDeedByOwner   = "deed:by-owner:"
	keyChainTip         = "chain:tip"
	keyChainDifficulty  = "chain:difficulty"
	keyCashGenesisDone  = "chain:cash_genesis_done"
	keyTokenomicsSupply = "tokenomics:supply"
	prefixVault         = "vault:"
	prefixPeer          = "peer:"
	prefixBannedPeer    = "banned_peer:"
)

func heightKey(height uint64) []byte {
	k := make([]byte, len(prefixBlockHeight)+8)
	copy(k, prefixBlockHeight)
	binary.BigEndian.PutUint64(k[len(prefixBlockHeight):], height)
	return k
}

func hashKey(hash chainhash.Hash) []byte {
	return append([]byte(prefixBlockHash), hash[:]...)
}

func blockIndexKey(hash chainhash.Hash) []byte {
	return append([]byte(prefixBlockIndex), hash[:]...)
}

func txKey(id chainhash.Hash) []byte {
	return append([]byte(prefixTx), id[:]...)
}

func addrKey(prefix string, addr wire.Address) []byte {
	return append([]byte(prefix), addr[:]...)
}

func deedKey(id uint64) []byte {
	k := make([]byte, len(prefixDeed)+8)
	copy(k, prefixDeed)
	binary.BigEndian.PutUint64(k[len(prefixDeed):], id)
	return k
}

func get(db *leveldb.DB, key []byte) ([]byte, error) {
	v, err := db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func getUint64(db *leveldb.DB, key []byte) (uint64, error) {
	v, err := get(db, key)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func putUint64(db *leveldb.DB, key []byte, v uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return db.Put(key, buf, nil)
}

// getUint64LE and putUint64LE back the chain:difficulty key, whose
// schema fixes it as u64_le — distinct from the big-endian encoding
// the rest of this file's scalar keys use.
func getUint64LE(db *leveldb.DB, key []byte) (uint64, error) {
	v, err := get(db, key)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v), nil
}

func putUint64LE(db *leveldb.DB, key []byte, v uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return db.Put(key, buf, nil)
}

func getUint128LE(db *leveldb.DB, key []byte) (amount.Uint128, error) {
	v, err := get(db, key)
	if err != nil {
		return amount.Uint128{}, err
	}
	if len(v) != 16 {
		return amount.Uint128{}, fmt.Errorf("database: %q is %d bytes, want 16", key, len(v))
	}
	return amount.Uint128LE(v), nil
}

func putUint128LE(db *leveldb.DB, key []byte, v amount.Uint128) error {
	buf := make([]byte, 16)
	v.PutLE(buf)
	return db.Put(key, buf, nil)
}

// BlockIndexEntry is the chain-selection metadata kept for every block
// this node has ever validated and accepted, whether or not it
// currently sits on the active chain. It doubles as the per-block
// undo-log: Credits/Minted/CashGenesisApplied record exactly what
// applyRewards computed for this block at acceptance time, so a reorg
// can disconnect or reconnect it by replaying recorded deltas instead
// of re-running consensus logic.
type BlockIndexEntry struct {
	Height             uint64
	PrevHash           chainhash.Hash
	Difficulty         uint64
	Timestamp          uint64
	CumulativeWork     [32]byte // big-endian magnitude
	Credits            map[wire.Address]uint64
	Minted             uint64
	CashGenesisApplied bool // whether the CASH ledger is applied as of this block
}

const blockIndexFixedLen = 8 + chainhash.HashSize + 8 + 8 + 32 + 1 + 16 + 4

func encodeBlockIndexEntry(e *BlockIndexEntry) []byte {
	buf := make([]byte, blockIndexFixedLen+len(e.Credits)*(32+16))
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], e.Height)
	off += 8
	copy(buf[off:], e.PrevHash[:])
	off += chainhash.HashSize
	binary.LittleEndian.PutUint64(buf[off:], e.Difficulty)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], e.Timestamp)
	off += 8
	copy(buf[off:], e.CumulativeWork[:])
	off += 32
	if e.CashGenesisApplied {
		buf[off] = 1
	}
	off++
	mintedBuf := make([]byte, 16)
	amount.FromUint64(e.Minted).PutLE(mintedBuf)
	copy(buf[off:], mintedBuf)
	off += 16
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(e.Credits)))
	off += 4
	for addr, amt := range e.Credits {
		copy(buf[off:], addr[:])
		off += 32
		amtBuf := make([]byte, 16)
		amount.FromUint64(amt).PutLE(amtBuf)
		copy(buf[off:], amtBuf)
		off += 16
	}
	return buf
}

func decodeBlockIndexEntry(b []byte) (*BlockIndexEntry, error) {
	if len(b) < blockIndexFixedLen {
		return nil, fmt.Errorf("database: block index entry is %d bytes, want at least %d", len(b), blockIndexFixedLen)
	}
	e := &BlockIndexEntry{}
	off := 0
	e.Height = binary.LittleEndian.Uint64(b[off:])
	off += 8
	copy(e.PrevHash[:], b[off:off+chainhash.HashSize])
	off += chainhash.HashSize
	e.Difficulty = binary.LittleEndian.Uint64(b[off:])
	off += 8
	e.Timestamp = binary.LittleEndian.Uint64(b[off:])
	off += 8
	copy(e.CumulativeWork[:], b[off:off+32])
	off += 32
	e.CashGenesisApplied = b[off] == 1
	off++
	e.Minted = amount.Uint128LE(b[off : off+16]).Lo
	off += 16
	numCredits := binary.LittleEndian.Uint32(b[off:])
	off += 4

	wantLen := blockIndexFixedLen + int(numCredits)*(32+16)
	if len(b) != wantLen {
		return nil, fmt.Errorf("database: block index entry is %d bytes, want %d for %d credits", len(b), wantLen, numCredits)
	}

	if numCredits > 0 {
		e.Credits = make(map[wire.Address]uint64, numCredits)
	}
	for i := uint32(0); i < numCredits; i++ {
		var addr wire.Address
		copy(addr[:], b[off:off+32])
		off += 32
		amt := amount.Uint128LE(b[off : off+16])
		off += 16
		e.Credits[addr] = amt.Lo
	}
	return e, nil
}

// Batch accumulates block-acceptance (or reorg) writes so they land in
// one atomic LevelDB write: the schema's "a successful batch flush is
// the commit point" contract. Every Batch method only stages a write;
// nothing is visible to readers until Store.Commit flushes it.
type Batch struct {
	b *leveldb.Batch
}

// NewBatch returns an empty batch.
func (s *Store) NewBatch() *Batch {
	return &Batch{b: new(leveldb.Batch)}
}

// Commit flushes every write staged in batch as one atomic operation.
func (s *Store) Commit(batch *Batch) error {
	return s.db.Write(batch.b, nil)
}

// PutBlock stages the full encoded block (header plus every
// transaction) under its hash, plus an individual record per
// transaction under tx:<id>. It does not touch the height index or
// chain tip — callers add those separately, since a block may be
// staged as a side-chain block that never becomes active.
func (batch *Batch) PutBlock(hash chainhash.Hash, block *wire.Block) error {
	encoded, err := wire.EncodeBlock(block)
	if err != nil {
		return err
	}
	batch.b.Put(hashKey(hash), encoded)
	for _, tx := range block.Transactions {
		batch.b.Put(txKey(tx.ID), wire.EncodeTx(tx))
	}
	return nil
}

// PutBlockIndexEntry stages a block's chain-selection metadata under
// blockindex:<hash>.
func (batch *Batch) PutBlockIndexEntry(hash chainhash.Hash, e *BlockIndexEntry) {
	batch.b.Put(blockIndexKey(hash), encodeBlockIndexEntry(e))
}

// SetHeightIndex stages height -> hash, marking hash as the active
// block at that height.
func (batch *Batch) SetHeightIndex(height uint64, hash chainhash.Hash) {
	batch.b.Put(heightKey(height), hash[:])
}

// DeleteHeightIndex removes the active-chain height -> hash mapping
// for height, used when disconnecting a block during a reorg. The
// block's body and index entry are untouched so it remains reachable
// by hash.
func (batch *Batch) DeleteHeightIndex(height uint64) {
	batch.b.Delete(heightKey(height))
}

// SetChainTip stages the active chain's best height and hash.
func (batch *Batch) SetChainTip(height uint64, hash chainhash.Hash) {
	buf := make([]byte, 8+chainhash.HashSize)
	binary.BigEndian.PutUint64(buf[:8], height)
	copy(buf[8:], hash[:])
	batch.b.Put([]byte(keyChainTip), buf)
}

// SetChainDifficulty stages the active chain's current difficulty.
func (batch *Batch) SetChainDifficulty(difficulty uint64) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, difficulty)
	batch.b.Put([]byte(keyChainDifficulty), buf)
}

// SetBalance stages an address's balance.
func (batch *Batch) SetBalance(addr wire.Address, bal amount.Uint128) {
	buf := make([]byte, 16)
	bal.PutLE(buf)
	batch.b.Put(addrKey(prefixBalance, addr), buf)
}

// SetTokenomicsSupply stages the running total minted supply.
func (batch *Batch) SetTokenomicsSupply(total amount.Uint128) {
	buf := make([]byte, 16)
	total.PutLE(buf)
	batch.b.Put([]byte(keyTokenomicsSupply), buf)
}

// SetCashGenesisFlag stages the one-shot CASH genesis ledger flag.
// Unlike a counter, this is safe to stage unconditionally in either
// direction during a reorg: reconnecting a block sets it to that
// block's own recorded state, disconnecting sets it to the parent's.
func (batch *Batch) SetCashGenesisFlag(applied bool) {
	var v byte
	if applied {
		v = 1
	}
	batch.b.Put([]byte(keyCashGenesisDone), []byte{v})
}

// PutBlock is a single-operation convenience wrapper over the Batch
// methods of the same name plus the height-index bookkeeping a linear
// (non-reorg) bootstrap needs; see Chain.initGenesis.
func (s *Store) PutBlock(height uint64, hash chainhash.Hash, block *wire.Block, index *BlockIndexEntry) error {
	batch := s.NewBatch()
	if err := batch.PutBlock(hash, block); err != nil {
		return err
	}
	batch.PutBlockIndexEntry(hash, index)
	batch.SetHeightIndex(height, hash)
	return s.Commit(batch)
}

// Block returns the full decoded block stored under hash.
func (s *Store) Block(hash chainhash.Hash) (*wire.Block, error) {
	raw, err := get(s.db, hashKey(hash))
	if err != nil {
		return nil, err
	}
	return wire.DecodeBlock(raw)
}

// BlockIndexEntry returns the chain-selection metadata recorded for
// hash, whether or not hash is on the active chain.
func (s *Store) BlockIndexEntry(hash chainhash.Hash) (*BlockIndexEntry, error) {
	raw, err := get(s.db, blockIndexKey(hash))
	if err != nil {
		return nil, err
	}
	return decodeBlockIndexEntry(raw)
}

// BlockHashAtHeight returns the active chain's header hash at height.
func (s *Store) BlockHashAtHeight(height uint64) (chainhash.Hash, error) {
	v, err := get(s.db, heightKey(height))
	if err != nil {
		return chainhash.Hash{}, err
	}
	var h chainhash.Hash
	copy(h[:], v)
	return h, nil
}

// Tx returns the stored transaction record for id.
func (s *Store) Tx(id chainhash.Hash) (wire.Tx, error) {
	raw, err := get(s.db, txKey(id))
	if err != nil {
		return wire.Tx{}, err
	}
	return wire.DecodeTx(raw)
}

// Balance returns an address's current balance, 0 if never credited.
func (s *Store) Balance(addr wire.Address) (amount.Uint128, error) {
	v, err := getUint128LE(s.db, addrKey(prefixBalance, addr))
	if errors.Is(err, ErrNotFound) {
		return amount.Uint128{}, nil
	}
	return v, err
}

// SetBalance overwrites an address's balance.
func (s *Store) SetBalance(addr wire.Address, bal amount.Uint128) error {
	return putUint128LE(s.db, addrKey(prefixBalance, addr), bal)
}

// CreditBalance adds delta to an address's balance and returns the new
// total, saturating rather than wrapping on overflow.
func (s *Store) CreditBalance(addr wire.Address, delta amount.Uint128) (amount.Uint128, error) {
	cur, err := s.Balance(addr)
	if err != nil {
		return amount.Uint128{}, err
	}
	next := cur.Add(delta)
	return next, s.SetBalance(addr, next)
}

// Nonce returns an address's current transaction nonce, 0 if unset.
func (s *Store) Nonce(addr wire.Address) (uint64, error) {
	v, err := getUint64(s.db, addrKey(prefixNonce, addr))
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	return v, err
}

// SetNonce overwrites an address's transaction nonce.
func (s *Store) SetNonce(addr wire.Address, nonce uint64) error {
	return putUint64(s.db, addrKey(prefixNonce, addr), nonce)
}

// DeedOwner returns the owning address of deed id.
func (s *Store) DeedOwner(id uint64) (wire.Address, error) {
	v, err := get(s.db, deedKey(id))
	if err != nil {
		return wire.Address{}, err
	}
	var addr wire.Address
	copy(addr[:], v)
	return addr, nil
}

// SetDeedOwner records owner as the holder of deed id, maintaining the
// by-owner reverse index alongside it.
func (s *Store) SetDeedOwner(id uint64, owner wire.Address) error {
	batch := new(leveldb.Batch)
	batch.Put(deedKey(id), owner[:])
	batch.Put(append(addrKey(prefixDeedByOwner, owner), deedIDSuffix(id)...), []byte{1})
	return s.db.Write(batch, nil)
}

func deedIDSuffix(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

// DeedsByOwner returns every deed ID held by owner.
func (s *Store) DeedsByOwner(owner wire.Address) ([]uint64, error) {
	prefix := addrKey(prefixDeedByOwner, owner)
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var ids []uint64
	for iter.Next() {
		key := iter.Key()
		id := binary.BigEndian.Uint64(key[len(prefix):])
		ids = append(ids, id)
	}
	return ids, iter.Error()
}

// AllDeedHolders returns the distinct set of addresses holding at
// least one deed, used by the staking-phase payout distributor.
func (s *Store) AllDeedHolders() ([]wire.Address, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixDeedByOwner)), nil)
	defer iter.Release()

	seen := make(map[wire.Address]bool)
	var holders []wire.Address
	for iter.Next() {
		key := iter.Key()
		rest := key[len(prefixDeedByOwner):]
		if len(rest) < 32 {
			continue
		}
		var addr wire.Address
		copy(addr[:], rest[:32])
		if !seen[addr] {
			seen[addr] = true
			holders = append(holders, addr)
		}
	}
	return holders, iter.Error()
}

// ChainTip returns the current best block's height and hash.
func (s *Store) ChainTip() (uint64, chainhash.Hash, error) {
	v, err := get(s.db, []byte(keyChainTip))
	if errors.Is(err, ErrNotFound) {
		return 0, chainhash.Hash{}, nil
	}
	if err != nil {
		return 0, chainhash.Hash{}, err
	}
	height := binary.BigEndian.Uint64(v[:8])
	var hash chainhash.Hash
	copy(hash[:], v[8:])
	return height, hash, nil
}

// SetChainTip records the current best block's height and hash.
func (s *Store) SetChainTip(height uint64, hash chainhash.Hash) error {
	batch := s.NewBatch()
	batch.SetChainTip(height, hash)
	return s.Commit(batch)
}

// ChainDifficulty returns the current difficulty, 1 if unset (chain
// start).
func (s *Store) ChainDifficulty() (uint64, error) {
	v, err := getUint64LE(s.db, []byte(keyChainDifficulty))
	if errors.Is(err, ErrNotFound) {
		return 1, nil
	}
	return v, err
}

// SetChainDifficulty overwrites the current difficulty.
func (s *Store) SetChainDifficulty(difficulty uint64) error {
	return putUint64LE(s.db, []byte(keyChainDifficulty), difficulty)
}

// CashGenesisDone reports whether the one-shot CASH genesis ledger has
// already been applied on the active chain.
func (s *Store) CashGenesisDone() (bool, error) {
	v, err := get(s.db, []byte(keyCashGenesisDone))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(v) == 1 && v[0] == 1, nil
}

// SetCashGenesisFlag overwrites the one-shot CASH genesis ledger flag.
func (s *Store) SetCashGenesisFlag(applied bool) error {
	batch := s.NewBatch()
	batch.SetCashGenesisFlag(applied)
	return s.Commit(batch)
}

// TokenomicsSupply returns the running total token supply.
func (s *Store) TokenomicsSupply() (amount.Uint128, error) {
	v, err := getUint128LE(s.db, []byte(keyTokenomicsSupply))
	if errors.Is(err, ErrNotFound) {
		return amount.Uint128{}, nil
	}
	return v, err
}

// AddTokenomicsSupply adds delta (which may represent newly minted
// supply) to the running total and returns the new total.
func (s *Store) AddTokenomicsSupply(delta amount.Uint128) (amount.Uint128, error) {
	cur, err := s.TokenomicsSupply()
	if err != nil {
		return amount.Uint128{}, err
	}
	next := cur.Add(delta)
	return next, putUint128LE(s.db, []byte(keyTokenomicsSupply), next)
}

// VaultBalance returns the balance of one (bucket, asset) vault
// sub-account, e.g. ("fees", "LAND").
func (s *Store) VaultBalance(bucket, asset string) (amount.Uint128, error) {
	key := []byte(prefixVault + bucket + ":" + asset)
	v, err := getUint128LE(s.db, key)
	if errors.Is(err, ErrNotFound) {
		return amount.Uint128{}, nil
	}
	return v, err
}

// CreditVault adds delta to a vault sub-account's balance.
func (s *Store) CreditVault(bucket, asset string, delta amount.Uint128) error {
	cur, err := s.VaultBalance(bucket, asset)
	if err != nil {
		return err
	}
	key := []byte(prefixVault + bucket + ":" + asset)
	return putUint128LE(s.db, key, cur.Add(delta))
}

// PutPeer records a known peer's last-seen gossip entry.
func (s *Store) PutPeer(hostPort string, raw []byte) error {
	return s.db.Put([]byte(prefixPeer+hostPort), raw, nil)
}

// DeletePeer removes a known-peer entry.
func (s *Store) DeletePeer(hostPort string) error {
	return s.db.Delete([]byte(prefixPeer+hostPort), nil)
}

// IsBanned reports whether hostPort is currently on the ban list.
func (s *Store) IsBanned(hostPort string) (bool, error) {
	_, err := get(s.db, []byte(prefixBannedPeer+hostPort))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// BanPeer adds hostPort to the ban list, recording the Unix expiry time
// so PruneExpiredBans can remove it once it has lapsed.
func (s *Store) BanPeer(hostPort string, expiresAt uint64) error {
	return putUint64(s.db, []byte(prefixBannedPeer+hostPort), expiresAt)
}

// LoadBans returns every currently-recorded ban as host -> Unix expiry,
// including already-expired entries; callers that want a live ban list
// should call PruneExpiredBans first.
func (s *Store) LoadBans() (map[string]uint64, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixBannedPeer)), nil)
	defer iter.Release()

	bans := make(map[string]uint64)
	for iter.Next() {
		if len(iter.Value()) != 8 {
			continue
		}
		host := string(iter.Key()[len(prefixBannedPeer):])
		bans[host] = binary.BigEndian.Uint64(iter.Value())
	}
	return bans, iter.Error()
}

// PruneExpiredBans removes every ban-list entry whose recorded expiry
// is at or before now, returning the number removed.
func (s *Store) PruneExpiredBans(now uint64) (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixBannedPeer)), nil)
	defer iter.Release()

	var toRemove [][]byte
	for iter.Next() {
		if len(iter.Value()) != 8 {
			continue
		}
		expiresAt := binary.BigEndian.Uint64(iter.Value())
		if expiresAt <= now {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			toRemove = append(toRemove, key)
		}
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}

	batch := new(leveldb.Batch)
	for _, key := range toRemove {
		batch.Delete(key)
	}
	if len(toRemove) > 0 {
		if err := s.db.Write(batch, nil); err != nil {
			return 0, err
		}
	}
	return len(toRemove), nil
}
