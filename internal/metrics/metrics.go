// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics exposes VisionX's Prometheus instrumentation: chain
// height/difficulty gauges, block-acceptance counters, miner hashrate,
// and peer-count gauges, all scraped over the standard
// promhttp.Handler endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every VisionX-specific collector registered against a
// dedicated registry (not the global default, so multiple nodes in one
// process — e.g. in tests — don't collide).
type Metrics struct {
	registry *prometheus.Registry

	ChainHeight      prometheus.Gauge
	ChainDifficulty  prometheus.Gauge
	BlocksAccepted   *prometheus.CounterVec // labeled by phase: "mining"/"staking"
	BlocksRejected   *prometheus.CounterVec // labeled by rule error code
	MinerHashrate    prometheus.Gauge
	PeerCount        prometheus.Gauge
	TokenomicsSupply prometheus.Gauge
	BlockTimeEMA     prometheus.Gauge
}

// New registers and returns the VisionX collector set.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		ChainHeight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "visionx",
			Name:      "chain_height",
			Help:      "Current best chain height.",
		}),
		ChainDifficulty: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "visionx",
			Name:      "chain_difficulty",
			Help:      "Current LWMA-120 retargeted difficulty.",
		}),
		BlocksAccepted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visionx",
			Name:      "blocks_accepted_total",
			Help:      "Blocks accepted onto the best chain, by phase.",
		}, []string{"phase"}),
		BlocksRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visionx",
			Name:      "blocks_rejected_total",
			Help:      "Blocks rejected during validation, by rule error code.",
		}, []string{"error_code"}),
		MinerHashrate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "visionx",
			Name:      "miner_hashes_per_second",
			Help:      "Local CPU miner's smoothed hash rate.",
		}),
		PeerCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "visionx",
			Name:      "peer_count",
			Help:      "Number of currently connected peers.",
		}),
		TokenomicsSupply: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "visionx",
			Name:      "tokenomics_supply_base_units",
			Help:      "Cumulative minted supply, in base units (8 decimals).",
		}),
		BlockTimeEMA: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "visionx",
			Name:      "block_time_ema_seconds",
			Help:      "Exponentially smoothed seconds between accepted blocks.",
		}),
	}
	return m
}

// ObserveChain updates the chain-derived gauges from the orchestrator's
// diagnostics snapshot fields (blockchain.Chain.Snapshot). Taking plain
// values rather than blockchain.Diagnostics itself keeps metrics a leaf
// package with no dependency back on blockchain.
func (m *Metrics) ObserveChain(height, difficulty uint64, blockTimeEMA, totalSupply float64) {
	m.ChainHeight.Set(float64(height))
	m.ChainDifficulty.Set(float64(difficulty))
	m.BlockTimeEMA.Set(blockTimeEMA)
	m.TokenomicsSupply.Set(totalSupply)
}

// Handler returns the HTTP handler a node's metrics listener serves.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
