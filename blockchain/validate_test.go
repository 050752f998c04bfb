// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "testing"

func TestValidateReorgDepth(t *testing.T) {
	if err := ValidateReorgDepth(100, 35); err == nil {
		t.Fatal("ValidateReorgDepth() with depth 65 did not error")
	}
	if err := ValidateReorgDepth(100, 36); err != nil {
		t.Fatalf("ValidateReorgDepth() with depth 64 errored: %v", err)
	}
	if err := ValidateReorgDepth(100, 101); err == nil {
		t.Fatal("ValidateReorgDepth() with fork ahead of tip did not error")
	}
}

func TestMedianTimePast(t *testing.T) {
	ts := []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	if got := MedianTimePast(ts); got != 6 {
		t.Fatalf("MedianTimePast() = %d, want 6", got)
	}

	// More than MTPSpan entries: only the trailing MTPSpan count.
	longer := append([]uint64{0, 0, 0}, ts...)
	if got := MedianTimePast(longer); got != 6 {
		t.Fatalf("MedianTimePast() with extra leading entries = %d, want 6", got)
	}
}

func TestValidateTimestamp(t *testing.T) {
	preceding := []uint64{10, 20, 30, 40, 50}

	if err := ValidateTimestamp(1000, 985, preceding); err == nil {
		t.Fatal("ValidateTimestamp() with timestamp beyond drift did not error")
	}
	if err := ValidateTimestamp(20, 25, preceding); err == nil {
		t.Fatal("ValidateTimestamp() not after median time past did not error")
	}
	if err := ValidateTimestamp(1000, 1000, preceding); err != nil {
		t.Fatalf("ValidateTimestamp() with valid timestamp errored: %v", err)
	}
}

func TestValidateHeightAndLineage(t *testing.T) {
	if err := ValidateHeightAndLineage(5, 3, true); err == nil {
		t.Fatal("ValidateHeightAndLineage() with wrong height did not error")
	}
	if err := ValidateHeightAndLineage(4, 3, false); err == nil {
		t.Fatal("ValidateHeightAndLineage() with mismatched prevHash did not error")
	}
	if err := ValidateHeightAndLineage(4, 3, true); err != nil {
		t.Fatalf("ValidateHeightAndLineage() with valid lineage errored: %v", err)
	}
}
