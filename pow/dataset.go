// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"sync"

	"github.com/visionx-network/visionx/chainhash"
)

// Dataset is a power-of-two-sized, read-only array of u64 words built
// deterministically for one epoch. It is shared lock-free across every
// concurrent hasher; per-hash writeback mutations never touch it
// directly (see hashScratch in visionx.go), which is what lets many
// miner workers and verifiers read the same Dataset concurrently.
type Dataset struct {
	epoch uint64
	words []uint64
}

// Len implements DatasetView.
func (d *Dataset) Len() int { return len(d.words) }

// At implements DatasetView.
func (d *Dataset) At(i uint64) uint64 { return d.words[i] }

// Epoch returns the epoch index this dataset was built for.
func (d *Dataset) Epoch() uint64 { return d.epoch }

// splitMix64 is Sebastiano Vigna's SplitMix64 generator, used to fill
// the dataset deterministically from a single 64-bit seed so every node
// builds byte-identical datasets.
type splitMix64 struct {
	state uint64
}

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// DeriveSeed folds the previous block's hash with an epoch index to
// produce the seed used to build that epoch's dataset.
func DeriveSeed(prevHash chainhash.Hash, epoch uint64) uint64 {
	h := chainhash.HashH(append(prevHash.Bytes(), u64LE(epoch)...))
	return beToU64(h[:8])
}

func u64LE(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func beToU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = (v << 8) | uint64(b[i])
	}
	return v
}

// BuildDataset deterministically constructs a dataset of wordCount words
// (must be a power of two) for the given epoch, seeded by seed. This is
// a blocking, CPU-bound operation intended to run on a dedicated builder
// goroutine.
func BuildDataset(epoch uint64, seed uint64, wordCount int) *Dataset {
	if wordCount <= 0 || wordCount&(wordCount-1) != 0 {
		panic("pow: dataset word count must be a power of two")
	}

	words := make([]uint64, wordCount)
	gen := splitMix64{state: seed}
	for i := range words {
		words[i] = gen.next()
	}
	return &Dataset{epoch: epoch, words: words}
}

// Manager caches at most two datasets (current and next epoch) and
// swaps between them on epoch rollover, so miners can keep hashing
// against the old dataset right up until the first block of a new
// epoch while the next one is built in the background.
type Manager struct {
	mu          sync.RWMutex
	current     *Dataset
	next        *Dataset
	wordCount   int
	buildNextFn func(epoch uint64) *Dataset
}

// NewManager creates a dataset manager with the given word count
// (defaults to DatasetWords when zero) and a seed/build function the
// manager calls to materialize datasets on demand.
func NewManager(wordCount int, build func(epoch uint64) *Dataset) *Manager {
	if wordCount == 0 {
		wordCount = DatasetWords
	}
	return &Manager{wordCount: wordCount, buildNextFn: build}
}

// EpochForHeight returns the epoch index a given block height belongs
// to.
func EpochForHeight(height uint64) uint64 {
	return height / EpochBlocks
}

// Current returns the dataset for the given epoch, building it
// synchronously if it is neither the cached current nor pre-built next
// dataset. Callers on the mining hot path should instead arrange for
// PrepareNext to have already run so this never blocks.
func (m *Manager) Current(epoch uint64) *Dataset {
	m.mu.RLock()
	if m.current != nil && m.current.epoch == epoch {
		d := m.current
		m.mu.RUnlock()
		return d
	}
	if m.next != nil && m.next.epoch == epoch {
		d := m.next
		m.mu.RUnlock()
		return d
	}
	m.mu.RUnlock()

	d := m.buildNextFn(epoch)

	m.mu.Lock()
	m.current = d
	m.mu.Unlock()
	return d
}

// PrepareNext builds the dataset for the epoch following the current
// one on the calling goroutine (meant to be invoked from a dedicated
// builder goroutine starting a few blocks before the epoch boundary)
// and installs it as the pre-built "next" dataset, ready for an atomic
// swap once the epoch actually rolls over.
func (m *Manager) PrepareNext(nextEpoch uint64) {
	d := m.buildNextFn(nextEpoch)

	m.mu.Lock()
	m.next = d
	m.mu.Unlock()
}

// Advance promotes the pre-built next dataset (if it matches epoch) to
// current, dropping the old current dataset. The swap is cheap because
// it only exchanges pointers under a short-held lock.
func (m *Manager) Advance(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next != nil && m.next.epoch == epoch {
		m.current = m.next
		m.next = nil
		return
	}
	// The background builder hasn't caught up; fall back to a
	// synchronous build rather than mining against a stale dataset.
	m.current = m.buildNextFn(epoch)
}
