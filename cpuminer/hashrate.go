// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cpuminer

import (
	"sync"
	"time"
)

// hashrateEMAAlpha weights the exponential moving average the sampler
// keeps of recent hash rate; lower values smooth out short bursts at
// the cost of slower convergence.
const hashrateEMAAlpha = 0.2

// HashrateSampler tracks an exponentially-smoothed hashes-per-second
// estimate fed by periodic counter snapshots from the worker pool.
type HashrateSampler struct {
	mu          sync.Mutex
	lastSample  time.Time
	lastCount   uint64
	emaHashrate float64
}

// NewHashrateSampler returns a sampler ready to accept its first
// Sample call.
func NewHashrateSampler() *HashrateSampler {
	return &HashrateSampler{lastSample: time.Now()}
}

// Sample records the cumulative hash count observed at now and folds
// the implied instantaneous rate into the running EMA. The baseline is
// the sampler's construction time with a count of 0, so the first call
// reports the average rate since construction.
func (h *HashrateSampler) Sample(now time.Time, cumulativeCount uint64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	elapsed := now.Sub(h.lastSample).Seconds()
	delta := cumulativeCount - h.lastCount
	h.lastSample = now
	h.lastCount = cumulativeCount

	if elapsed <= 0 {
		return h.emaHashrate
	}

	instant := float64(delta) / elapsed
	if h.emaHashrate == 0 {
		h.emaHashrate = instant
	} else {
		h.emaHashrate = hashrateEMAAlpha*instant + (1-hashrateEMAAlpha)*h.emaHashrate
	}
	return h.emaHashrate
}

// HashesPerSecond returns the sampler's current EMA estimate without
// taking a new sample.
func (h *HashrateSampler) HashesPerSecond() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.emaHashrate
}
