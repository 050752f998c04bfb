// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "testing"

func TestNextDifficultyStableWindow(t *testing.T) {
	// 121 samples exactly two seconds apart at difficulty 1000 should
	// retarget to (approximately) the same difficulty.
	window := make([]DifficultySample, 0, LWMAWindow+1)
	for i := 0; i <= LWMAWindow; i++ {
		window = append(window, DifficultySample{
			Timestamp:  uint64(i * TargetIntervalSeconds),
			Difficulty: 1000,
		})
	}

	got := NextDifficulty(window)
	if got < 950 || got > 1050 {
		t.Fatalf("NextDifficulty() = %d, want close to 1000", got)
	}
}

func TestNextDifficultySlowBlocksLowerDifficulty(t *testing.T) {
	window := make([]DifficultySample, 0, LWMAWindow+1)
	for i := 0; i <= LWMAWindow; i++ {
		window = append(window, DifficultySample{
			Timestamp:  uint64(i * TargetIntervalSeconds * 2), // blocks twice as slow as target
			Difficulty: 1000,
		})
	}

	got := NextDifficulty(window)
	if got >= 1000 {
		t.Fatalf("NextDifficulty() = %d, want less than 1000 for slow blocks", got)
	}
}

func TestNextDifficultyFastBlocksRaiseDifficulty(t *testing.T) {
	window := make([]DifficultySample, 0, LWMAWindow+1)
	for i := 0; i <= LWMAWindow; i++ {
		window = append(window, DifficultySample{
			Timestamp:  uint64(i), // one second per block, twice the target rate
			Difficulty: 1000,
		})
	}

	got := NextDifficulty(window)
	if got <= 1000 {
		t.Fatalf("NextDifficulty() = %d, want more than 1000 for fast blocks", got)
	}
}

func TestNextDifficultyFloor(t *testing.T) {
	window := []DifficultySample{
		{Timestamp: 0, Difficulty: 1},
		{Timestamp: 1_000_000, Difficulty: 1},
	}
	if got := NextDifficulty(window); got != minDifficulty {
		t.Fatalf("NextDifficulty() = %d, want floor of %d", got, minDifficulty)
	}
}

func TestNextDifficultyShortWindow(t *testing.T) {
	if got := NextDifficulty(nil); got != minDifficulty {
		t.Fatalf("NextDifficulty(nil) = %d, want %d", got, minDifficulty)
	}
	single := []DifficultySample{{Timestamp: 5, Difficulty: 42}}
	if got := NextDifficulty(single); got != 42 {
		t.Fatalf("NextDifficulty(single) = %d, want 42", got)
	}
}

func TestClampRatioBpsTiers(t *testing.T) {
	tests := []struct {
		name  string
		ratio int64
		want  int64
	}{
		{"parity", 10000, 10000},
		{"tier1 high clamp", 12000, 11000},
		{"tier1 low clamp", 8000, 9000},
		{"tier2 high clamp", 14900, 11500},
		{"tier3 high clamp", 16000, 12000},
		{"tier3 extreme high clamp", 100000, 12000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampRatioBps(tt.ratio); got != tt.want {
				t.Errorf("clampRatioBps(%d) = %d, want %d", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestDifficultyToTarget(t *testing.T) {
	target1 := DifficultyToTarget(1)
	target2 := DifficultyToTarget(2)

	// Doubling difficulty must halve the target (fewer valid digests).
	if !pow_BEGreaterHelper(target1, target2) {
		t.Fatalf("target for difficulty=1 should exceed target for difficulty=2")
	}
}

// pow_BEGreaterHelper avoids importing the pow package just for this one
// comparison in a test.
func pow_BEGreaterHelper(x, y [32]byte) bool {
	for i := 0; i < 32; i++ {
		if x[i] != y[i] {
			return x[i] > y[i]
		}
	}
	return false
}
