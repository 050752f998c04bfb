// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pow implements VisionX, the memory-hard proof-of-work hash
// function VisionX nodes use to seal and verify blocks.
package pow

import (
	"encoding/binary"
	"math/bits"

	"github.com/visionx-network/visionx/chainhash"
)

// Consensus-fixed VisionX parameters.
const (
	// DatasetSizeMiB is the default dataset size in mebibytes.
	DatasetSizeMiB = 64

	// DatasetWords is the number of u64 words in the default-sized
	// dataset: 64 MiB = 2^23 words.
	DatasetWords = (DatasetSizeMiB * 1024 * 1024) / 8

	// MixIterations is the number of inner-loop mix rounds per hash.
	MixIterations = 65536

	// WriteEvery introduces bandwidth-hardness: every this-many
	// iterations a state-derived value is written back into the
	// dataset.
	WriteEvery = 1024

	// EpochBlocks is the number of blocks sharing one dataset.
	EpochBlocks = 32
)

// DatasetView is the read-only surface VisionX needs from a dataset,
// satisfied by the single shared *Dataset every miner and verifier
// reads from concurrently; see pow/dataset.go.
type DatasetView interface {
	// Len returns the number of u64 words in the dataset. Always a
	// power of two.
	Len() int

	// At returns the word at index i.
	At(i uint64) uint64
}

// hashScratch overlays a small set of copy-on-write entries on top of a
// shared, read-only DatasetView so that a single Hash call's writeback
// (at most MixIterations/WriteEvery entries) affects that call's own
// later reads without mutating the dataset shared by other hashers.
// Mining and verification both go through Hash, so both reproduce the
// same writeback mutation order from the same starting dataset.
type hashScratch struct {
	base    DatasetView
	overlay map[uint64]uint64
}

func (s *hashScratch) At(i uint64) uint64 {
	if v, ok := s.overlay[i]; ok {
		return v
	}
	return s.base.At(i)
}

func (s *hashScratch) set(i, v uint64) {
	if s.overlay == nil {
		s.overlay = make(map[uint64]uint64, MixIterations/WriteEvery)
	}
	s.overlay[i] = v
}

// feistelRound is one round of the 128-bit Feistel mixer: (a, b) -> (b,
// a XOR f(b)). f is a cheap nonlinear multiply-rotate-xor mix, not a
// cryptographic primitive in its own right — security comes from
// chaining it with the dataset-dependent mix loop, not from this round
// function alone.
func feistelRound(a, b uint64, roundConst uint64) (uint64, uint64) {
	f := b * 0x9E3779B97F4A7C15
	f ^= bits.RotateLeft64(f, 17)
	f += roundConst
	f ^= bits.RotateLeft64(b, 31)
	return b, a ^ f
}

// foldHeader folds a canonical header (with nonce already written in at
// its fixed offset) into the initial 128-bit mixer state via four
// Feistel rounds.
func foldHeader(header []byte) (a, b uint64) {
	h := chainhash.HashH(header)
	a = binary.LittleEndian.Uint64(h[0:8]) ^ binary.LittleEndian.Uint64(h[16:24])
	b = binary.LittleEndian.Uint64(h[8:16]) ^ binary.LittleEndian.Uint64(h[24:32])
	for round := uint64(0); round < 4; round++ {
		a, b = feistelRound(a, b, round+1)
	}
	return a, b
}

// expand128to256 runs four more Feistel rounds over two independent
// (a, b) seeds to emit a 256-bit digest as two 128-bit halves.
func expand128to256(a, b uint64) [32]byte {
	var out [32]byte

	ha, hb := a, b
	for round := uint64(0); round < 4; round++ {
		ha, hb = feistelRound(ha, hb, round+0x100)
	}
	binary.LittleEndian.PutUint64(out[0:8], ha)
	binary.LittleEndian.PutUint64(out[8:16], hb)

	la, lb := b, a
	for round := uint64(0); round < 4; round++ {
		la, lb = feistelRound(la, lb, round+0x200)
	}
	binary.LittleEndian.PutUint64(out[16:24], la)
	binary.LittleEndian.PutUint64(out[24:32], lb)

	return out
}

// Hash computes the VisionX proof-of-work digest ("pow_digest") of a
// canonical header (nonce already written in at its
// fixed offset) against the given dataset. This is distinct from the
// header_hash (plain BLAKE3 of the header) and from the value actually
// compared against the target, which is BLAKE3(pow_digest) — see
// Verify.
//
// The inner loop uses wrapping arithmetic throughout and masks indices
// with (len-1) rather than using modulo, which requires the dataset's
// word count to be a power of two.
func Hash(header []byte, ds DatasetView) [32]byte {
	scratch := &hashScratch{base: ds}
	mask := uint64(ds.Len() - 1)

	a, b := foldHeader(header)

	for i := uint64(0); i < MixIterations; i++ {
		idx1 := (a ^ (i * 0x2545F4914F6CDD1D)) & mask
		idx2 := (b ^ bits.RotateLeft64(i, 23)) & mask

		w1 := scratch.At(idx1)
		w2 := scratch.At(idx2)

		a, b = feistelRound(a^w1, b^w2, i)

		if i != 0 && i%WriteEvery == 0 {
			writeIdx := (a ^ b) & mask
			scratch.set(writeIdx, scratch.At(writeIdx)^(a+b))
		}
	}

	return expand128to256(a, b)
}

// BEGreater reports whether x, interpreted as a big-endian 256-bit
// unsigned integer, is strictly greater than y under the same
// interpretation. Used to compare a PoW digest against a target without
// allocating a math/big.Int on the hot path.
func BEGreater(x, y [32]byte) bool {
	for i := 0; i < 32; i++ {
		if x[i] != y[i] {
			return x[i] > y[i]
		}
	}
	return false
}

// MeetsTarget reports whether digest, compared as a big-endian 256-bit
// integer, is less than or equal to target.
func MeetsTarget(digest, target [32]byte) bool {
	return !BEGreater(digest, target)
}

// Verify computes the VisionX pow_digest for header against ds, folds it
// through the final BLAKE3 step, and reports whether the result meets
// target. It returns the folded digest alongside the
// verdict so callers (the block submitter, compact-block reconstruction)
// can log or persist it without rehashing.
func Verify(header []byte, ds DatasetView, target [32]byte) (solved bool, digest [32]byte) {
	powDigest := Hash(header, ds)
	digest = chainhash.HashH(powDigest[:])
	return MeetsTarget(digest, target), digest
}
