// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sort"
)

// MaxReorgDepth is the deepest reorganization the validator will ever
// accept; a competing chain that forks deeper than this is rejected
// outright regardless of its work.
const MaxReorgDepth = 64

// MaxTimeDrift bounds, in seconds, how far a block's timestamp may lead
// or lag the local clock.
const MaxTimeDrift = 10

// MTPSpan is the number of immediately preceding blocks the
// median-time-past rule considers.
const MTPSpan = 11

// ValidateReorgDepth rejects a candidate fork whose point of divergence
// lies more than MaxReorgDepth blocks behind the current tip.
// forkHeight is the height of the last block the candidate chain shares
// with the current best chain; tipHeight is the current best chain's
// height.
func ValidateReorgDepth(tipHeight, forkHeight uint64) error {
	if forkHeight > tipHeight {
		return ruleError(ErrBadHeight, "fork point is ahead of the current tip")
	}
	depth := tipHeight - forkHeight
	if depth > MaxReorgDepth {
		str := fmt.Sprintf("reorg depth %d exceeds maximum of %d", depth, MaxReorgDepth)
		return ruleError(ErrReorgDepthExceeded, str)
	}
	return nil
}

// MedianTimePast returns the median timestamp of the supplied trailing
// timestamps, which should be the up-to-MTPSpan timestamps immediately
// preceding the candidate block, oldest first.
func MedianTimePast(precedingTimestamps []uint64) uint64 {
	if len(precedingTimestamps) == 0 {
		return 0
	}
	window := precedingTimestamps
	if len(window) > MTPSpan {
		window = window[len(window)-MTPSpan:]
	}
	sorted := make([]uint64, len(window))
	copy(sorted, window)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}

// ValidateTimestamp enforces the timestamp rules a candidate header
// must satisfy: it may not lead or lag the local clock by more than
// MaxTimeDrift seconds in either direction, and it must exceed
// (strictly) the median time of the preceding MTPSpan blocks.
func ValidateTimestamp(headerTimestamp, now uint64, precedingTimestamps []uint64) error {
	if headerTimestamp > now+MaxTimeDrift {
		str := fmt.Sprintf("block timestamp %d is %d seconds ahead of local time %d, "+
			"exceeding the %d second drift allowance",
			headerTimestamp, headerTimestamp-now, now, MaxTimeDrift)
		return ruleError(ErrTimeTooNew, str)
	}
	if now > headerTimestamp+MaxTimeDrift {
		str := fmt.Sprintf("block timestamp %d is %d seconds behind local time %d, "+
			"exceeding the %d second drift allowance",
			headerTimestamp, now-headerTimestamp, now, MaxTimeDrift)
		return ruleError(ErrTimeTooOld, str)
	}

	mtp := MedianTimePast(precedingTimestamps)
	if mtp != 0 && headerTimestamp <= mtp {
		str := fmt.Sprintf("block timestamp %d is not after median time past %d",
			headerTimestamp, mtp)
		return ruleError(ErrTimeTooOld, str)
	}
	return nil
}

// ValidateHeightAndLineage checks the two structural invariants every
// accepted block must satisfy relative to its parent: height is
// exactly parentHeight+1, and prevHash matches the parent's header
// hash.
func ValidateHeightAndLineage(height, parentHeight uint64, prevHashMatchesParent bool) error {
	if height != parentHeight+1 {
		str := fmt.Sprintf("block height %d is not one more than parent height %d",
			height, parentHeight)
		return ruleError(ErrBadHeight, str)
	}
	if !prevHashMatchesParent {
		return ruleError(ErrBadPrevHash, "block prev_hash does not match parent header hash")
	}
	return nil
}
