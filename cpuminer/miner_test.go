// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cpuminer

import (
	"context"
	"testing"
	"time"

	"github.com/visionx-network/visionx/pow"
	"github.com/visionx-network/visionx/wire"
)

func easyTarget() [32]byte {
	var target [32]byte
	for i := range target {
		target[i] = 0xff
	}
	return target
}

func TestMinerFindsSolutionWithEasyTarget(t *testing.T) {
	ds := pow.BuildDataset(0, 1, 1024)
	template := &wire.BlockHeader{Version: 1, Height: 1}

	m := NewMiner(ProfileLaptop, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := m.Mine(ctx, template, ds, easyTarget(), 0)
	if err != nil {
		t.Fatalf("Mine() error = %v", err)
	}
	if result == nil {
		t.Fatal("Mine() returned nil result with an all-0xff target")
	}

	solved, digest := pow.Verify(result.Header.Serialize(), ds, easyTarget())
	if !solved {
		t.Fatal("returned result does not independently verify")
	}
	if digest != result.Digest {
		t.Fatalf("returned digest %x does not match reverified digest %x", result.Digest, digest)
	}
}

func TestMinerRespectsContextCancellation(t *testing.T) {
	ds := pow.BuildDataset(0, 1, 1024)
	template := &wire.BlockHeader{Version: 1, Height: 1}

	var impossible [32]byte // all-zero target, practically unreachable

	m := NewMiner(ProfileBalanced, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := m.Mine(ctx, template, ds, impossible, 0)
	if result != nil {
		t.Fatalf("Mine() found a result against an impossible target: %+v", result)
	}
	if err == nil {
		t.Fatal("Mine() did not report an error after context cancellation")
	}
}

func TestHashrateSamplerIncreasesWithAttempts(t *testing.T) {
	s := NewHashrateSampler()
	start := time.Now()

	first := s.Sample(start, 0)
	if first != 0 {
		t.Fatalf("first Sample() = %f, want 0", first)
	}

	second := s.Sample(start.Add(time.Second), 1000)
	if second <= 0 {
		t.Fatalf("second Sample() = %f, want > 0", second)
	}
}

func TestWorkerCountProfiles(t *testing.T) {
	if got := WorkerCount(ProfileLaptop, 8); got != 4 {
		t.Fatalf("WorkerCount(laptop, 8) = %d, want 4", got)
	}
	if got := WorkerCount(ProfileBeast, 8); got != 8 {
		t.Fatalf("WorkerCount(beast, 8) = %d, want 8", got)
	}
	if got := WorkerCount(ProfileBalanced, 8); got != 7 {
		t.Fatalf("WorkerCount(balanced, 8) = %d, want 7", got)
	}
	if got := WorkerCount(ProfileLaptop, 1); got != 1 {
		t.Fatalf("WorkerCount(laptop, 1) = %d, want 1 (floor)", got)
	}
}
