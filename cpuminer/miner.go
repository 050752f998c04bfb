// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cpuminer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/visionx-network/visionx/pow"
	"github.com/visionx-network/visionx/wire"
)

// nonceBatchSize is how many nonces a worker claims from the shared
// cursor per round trip, keeping contention on the atomic cursor low
// without letting any one worker hoard a large range.
const nonceBatchSize = 1000

// Result reports the winning header and digest found by a worker.
type Result struct {
	Header *wire.BlockHeader
	Digest [32]byte
	Nonce  uint64
}

// Miner runs a pool of hashing workers against a single candidate
// header template, racing to find a nonce whose VisionX pow_digest
// meets target. Only the first worker to find a solution reports it;
// the rest stop before their next nonce.
type Miner struct {
	profile  Profile
	workers  int
	sampler  *HashrateSampler
	attempts uint64 // atomic cumulative hash counter, read by the sampler
}

// NewMiner builds a miner using the given profile. numCPU <= 0 uses
// runtime.NumCPU().
func NewMiner(profile Profile, numCPU int) *Miner {
	return &Miner{
		profile: profile,
		workers: WorkerCount(profile, numCPU),
		sampler: NewHashrateSampler(),
	}
}

// Workers returns how many hashing goroutines this miner spins up.
func (m *Miner) Workers() int { return m.workers }

// Hashrate returns the miner's current smoothed hashes-per-second
// estimate.
func (m *Miner) Hashrate() float64 { return m.sampler.HashesPerSecond() }

// Mine hashes candidate nonces for template against ds until a worker
// finds a digest meeting target or ctx is canceled. The nonce cursor is
// not checked for wraparound.
// The template's Nonce field is ignored; each worker writes its own
// nonce into a private copy of the serialized header.
func (m *Miner) Mine(ctx context.Context, template *wire.BlockHeader, ds pow.DatasetView, target [32]byte, startNonce uint64) (*Result, error) {
	log.Debugf("mining height %d with %d workers, profile %s", template.Height, m.workers, m.profile)

	cursor := startNonce
	var winner atomic.Pointer[Result]
	var done int32

	var wg sync.WaitGroup
	for w := 0; w < m.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.mineWorker(ctx, template, ds, target, &cursor, &winner, &done)
		}()
	}
	wg.Wait()

	if r := winner.Load(); r != nil {
		log.Infof("found solution for height %d: nonce=%d", template.Height, r.Nonce)
		return r, nil
	}
	return nil, ctx.Err()
}

func (m *Miner) mineWorker(ctx context.Context, template *wire.BlockHeader, ds pow.DatasetView, target [32]byte, cursor *uint64, winner *atomic.Pointer[Result], done *int32) {
	header := template.Serialize()

	for atomic.LoadInt32(done) == 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}

		base := atomic.AddUint64(cursor, nonceBatchSize) - nonceBatchSize

		for n := base; n < base+nonceBatchSize; n++ {
			if atomic.LoadInt32(done) != 0 {
				return
			}

			wire.SetNonce(header, n)
			solved, digest := pow.Verify(header, ds, target)
			atomic.AddUint64(&m.attempts, 1)

			if solved {
				if atomic.CompareAndSwapInt32(done, 0, 1) {
					h, err := wire.DeserializeHeader(header)
					if err == nil {
						winner.Store(&Result{Header: h, Digest: digest, Nonce: n})
					}
				}
				return
			}
		}
	}
}

// SampleHashrate snapshots the cumulative attempt counter into the
// miner's EMA sampler. Callers run this on a ticker.
func (m *Miner) SampleHashrate(now time.Time) float64 {
	return m.sampler.Sample(now, atomic.LoadUint64(&m.attempts))
}
