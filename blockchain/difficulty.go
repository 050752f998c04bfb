// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
)

// LWMAWindow is the number of trailing samples the LWMA-120 controller
// averages over.
const LWMAWindow = 120

// TargetIntervalSeconds is the block time the controller targets.
const TargetIntervalSeconds = 2

// clamp tiers, in basis points, selected by how far the raw weighted
// ratio has drifted from 10000 (parity). Wider tiers apply as the
// drift grows, letting genuinely sustained hashrate swings through
// faster than a single fixed band would.
const (
	bpsUnit = 10000

	tier1DeviationBps = 2500 // <25% deviation
	tier1ClampLowBps  = 9000
	tier1ClampHighBps = 11000

	tier2DeviationBps = 5000 // <50% deviation
	tier2ClampLowBps  = 8500
	tier2ClampHighBps = 11500

	tier3ClampLowBps = 8000
	tier3ClampHighBps = 12000
)

// minDifficulty is the consensus floor; the controller never outputs
// below it regardless of how far actual block times lag the target.
const minDifficulty = 1

// DifficultySample is one (timestamp, difficulty) pair from chain
// history, oldest first, as the LWMA window needs them.
type DifficultySample struct {
	Timestamp  uint64 // seconds since Unix epoch
	Difficulty uint64
}

// bigZero is 0 represented as a big.Int, defined once to avoid the
// overhead of allocating it repeatedly.
var bigZero = big.NewInt(0)

// tierBoundsBps picks the clamp tier appropriate for how far ratioBps
// has already drifted from parity (10000 bps), returning the low/high
// bounds in basis points. The same tiers double as the allowed
// deviation of the next difficulty from the previous block's actual
// difficulty: tier1 is +-10%, tier2 +-15%, tier3 +-20%.
func tierBoundsBps(ratioBps int64) (low, high int64) {
	deviation := ratioBps - bpsUnit
	if deviation < 0 {
		deviation = -deviation
	}

	switch {
	case deviation < tier1DeviationBps:
		return tier1ClampLowBps, tier1ClampHighBps
	case deviation < tier2DeviationBps:
		return tier2ClampLowBps, tier2ClampHighBps
	default:
		return tier3ClampLowBps, tier3ClampHighBps
	}
}

// clampRatioBps bounds a raw weighted-solvetime ratio (in basis points,
// 10000 = parity) to the tier appropriate for how far it has already
// drifted from parity.
func clampRatioBps(ratioBps int64) int64 {
	low, high := tierBoundsBps(ratioBps)
	if ratioBps < low {
		return low
	}
	if ratioBps > high {
		return high
	}
	return ratioBps
}

// NextDifficulty calculates the required difficulty for the block
// following the supplied window of trailing samples, applying the
// LWMA-120 algorithm: a linearly-weighted average solvetime (recent
// samples weighted more heavily than old ones) compared against the
// 2-second target, clamped by clampRatioBps, multiplied against the
// window's average difficulty, and floored at 1.
//
// window is oldest first. An empty window yields 1 and a single-sample
// window yields that sample's difficulty; fewer than LWMAWindow+1
// samples (as during chain startup) is valid and simply uses a shorter
// effective window.
func NextDifficulty(window []DifficultySample) uint64 {
	if len(window) < 2 {
		if len(window) == 1 {
			return window[0].Difficulty
		}
		return minDifficulty
	}

	if len(window) > LWMAWindow+1 {
		window = window[len(window)-(LWMAWindow+1):]
	}

	n := int64(len(window) - 1)
	k := n * (n + 1) / 2

	weightedSolvetimeSum := big.NewInt(0)
	difficultySum := big.NewInt(0)
	for i := int64(1); i <= n; i++ {
		prev := window[i-1]
		cur := window[i]

		var solvetime int64
		if cur.Timestamp > prev.Timestamp {
			solvetime = int64(cur.Timestamp - prev.Timestamp)
		}
		// A non-positive or implausibly large solvetime (clock skew,
		// out-of-order samples during catch-up sync) is floored/capped
		// relative to six target intervals either way so a single bad
		// sample cannot dominate the weighted sum.
		if solvetime < 1 {
			solvetime = 1
		}
		maxSolvetime := int64(6 * TargetIntervalSeconds)
		if solvetime > maxSolvetime {
			solvetime = maxSolvetime
		}

		weightedSolvetimeSum.Add(weightedSolvetimeSum, big.NewInt(i*solvetime))
		difficultySum.Add(difficultySum, new(big.Int).SetUint64(cur.Difficulty))
	}

	avgDifficulty := new(big.Int).Div(difficultySum, big.NewInt(n))

	// ratioBps = weightedSolvetimeSum * 10000 / (k * targetInterval).
	denom := big.NewInt(k * TargetIntervalSeconds)
	ratioBig := new(big.Int).Mul(weightedSolvetimeSum, big.NewInt(bpsUnit))
	ratioBig.Div(ratioBig, denom)
	rawRatioBps := ratioBig.Int64()
	ratioBps := clampRatioBps(rawRatioBps)

	// nextDifficulty = avgDifficulty * 10000 / ratioBps; a larger ratio
	// (blocks arriving slower than target) lowers difficulty.
	next := new(big.Int).Mul(avgDifficulty, big.NewInt(bpsUnit))
	next.Div(next, big.NewInt(ratioBps))

	// The tiered bands bound the *output* against the previous block's
	// actual difficulty, not against avgDifficulty — those diverge
	// whenever the window's average differs from the last sample, which
	// would otherwise let the realized deviation exceed the stated
	// +-10/15/20% bands.
	prevDifficulty := window[len(window)-1].Difficulty
	low, high := tierBoundsBps(rawRatioBps)
	prevBig := new(big.Int).SetUint64(prevDifficulty)
	lowBound := new(big.Int).Div(new(big.Int).Mul(prevBig, big.NewInt(low)), big.NewInt(bpsUnit))
	highBound := new(big.Int).Div(new(big.Int).Mul(prevBig, big.NewInt(high)), big.NewInt(bpsUnit))
	if next.Cmp(lowBound) < 0 {
		next.Set(lowBound)
	}
	if next.Cmp(highBound) > 0 {
		next.Set(highBound)
	}

	if next.Cmp(bigZero) <= 0 {
		return minDifficulty
	}
	nextU64 := next.Uint64()
	if nextU64 < minDifficulty {
		return minDifficulty
	}

	log.Debugf("LWMA-120 retarget: window=%d avgDifficulty=%d ratioBps=%d nextDifficulty=%d",
		n, avgDifficulty.Uint64(), ratioBps, nextU64)

	return nextU64
}

// maxUint256 is 2^256 - 1, the numerator of the difficulty-to-target
// conversion.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// DifficultyToTarget converts a difficulty value to its big-endian
// 256-bit PoW target: target = (2^256-1) / difficulty.
func DifficultyToTarget(difficulty uint64) [32]byte {
	if difficulty < minDifficulty {
		difficulty = minDifficulty
	}
	targetBig := new(big.Int).Div(maxUint256, new(big.Int).SetUint64(difficulty))

	var target [32]byte
	targetBytes := targetBig.Bytes()
	copy(target[32-len(targetBytes):], targetBytes)
	return target
}
