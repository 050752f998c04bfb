// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cpuminer implements the VisionX miner manager: a worker pool
// that pulls nonce ranges from a shared atomic cursor, hashes candidate
// headers against the VisionX PoW function, and reports the first
// winning nonce found across every worker.
package cpuminer

import "runtime"

// Profile names the three preset worker-pool shapes exposed to
// operators. Profiles only affect how many OS threads the miner
// manager spins up; they change no consensus behavior.
type Profile string

// Preset profiles.
const (
	ProfileLaptop   Profile = "laptop"
	ProfileBalanced Profile = "balanced"
	ProfileBeast    Profile = "beast"
)

// WorkerCount returns how many hashing goroutines a profile should run,
// given the number of logical CPUs available. Unknown profile names
// fall back to "balanced".
func WorkerCount(profile Profile, numCPU int) int {
	if numCPU <= 0 {
		numCPU = runtime.NumCPU()
	}

	switch profile {
	case ProfileLaptop:
		n := numCPU / 2
		if n < 1 {
			n = 1
		}
		return n
	case ProfileBeast:
		return numCPU
	case ProfileBalanced:
		fallthrough
	default:
		n := numCPU - 1
		if n < 1 {
			n = 1
		}
		return n
	}
}
