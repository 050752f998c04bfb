// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/visionx-network/visionx/addrmgr"
	"github.com/visionx-network/visionx/blockchain"
	"github.com/visionx-network/visionx/chaincfg"
	"github.com/visionx-network/visionx/connmgr"
	"github.com/visionx-network/visionx/cpuminer"
	"github.com/visionx-network/visionx/database"
	"github.com/visionx-network/visionx/internal/metrics"
	netpkg "github.com/visionx-network/visionx/net"
	"github.com/visionx-network/visionx/peer"
	"github.com/visionx-network/visionx/pow"
	"github.com/visionx-network/visionx/wire"
)

// node ties every VisionX subsystem together: persistence, consensus,
// the PoW dataset manager, P2P transport, and (optionally) the local
// CPU miner.
type node struct {
	opCfg     *operatorConfig
	params    *chaincfg.Params
	chainCfg  *chaincfg.Config
	store     *database.Store
	dsManager *pow.Manager
	chain     *blockchain.Chain
	submitter *blockchain.Submitter

	addrMgr *addrmgr.Manager
	connMgr *connmgr.ConnManager
	metrics *metrics.Metrics

	mu    sync.Mutex
	peers map[string]*peer.Peer
}

func newNode(opCfg *operatorConfig, chainCfg *chaincfg.Config) (*node, error) {
	params := opCfg.params()

	store, err := database.Open(filepath.Join(opCfg.DataDir, defaultDataDirname))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	addrMgr, err := addrmgr.NewWithStore(store)
	if err != nil {
		return nil, fmt.Errorf("init peer directory: %w", err)
	}

	n := &node{
		opCfg:    opCfg,
		params:   params,
		chainCfg: chainCfg,
		store:    store,
		addrMgr:  addrMgr,
		metrics:  metrics.New(),
		peers:    make(map[string]*peer.Peer),
	}

	n.dsManager = pow.NewManager(0, n.buildDataset)

	chain, err := blockchain.New(params, chainCfg, store, n.dsManager)
	if err != nil {
		return nil, fmt.Errorf("init chain: %w", err)
	}
	n.chain = chain
	n.submitter = blockchain.NewSubmitter(chain, n)

	n.connMgr = connmgr.New(n.addrMgr, n.identity(), opCfg.maxOutboundPeers(), n.onOutboundConnect)

	return n, nil
}

// seedAddresses primes the peer directory with the network's DNS
// seeds so a fresh node has somewhere to dial on first start.
func (n *node) seedAddresses() {
	for _, seed := range n.params.DNSSeeds {
		if err := n.addrMgr.AddAddress(seed, mustPort(n.params.P2PPort)); err != nil {
			mainLog.Debugf("skipping seed %s: %v", seed, err)
		}
	}
}

func (n *node) onOutboundConnect(conn *netpkg.Conn) {
	n.trackPeer(peer.New(conn, n.peerHandlers(), n.addrMgr))
}

// buildDataset is the pow.Manager's dataset builder. It derives the
// epoch seed from the chain's current tip hash; nodes agree because
// the dataset only ever needs to be rebuilt once the epoch actually
// rolls over past the block that produced that tip.
func (n *node) buildDataset(epoch uint64) *pow.Dataset {
	_, tipHash := n.chain.Tip()
	seed := pow.DeriveSeed(tipHash, epoch)
	return pow.BuildDataset(epoch, seed, pow.DatasetWords)
}

// BroadcastBlock implements blockchain.Broadcaster by announcing the
// block to every connected peer.
func (n *node) BroadcastBlock(block *wire.Block) error {
	msg := &wire.MsgBlock{Block: *block}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, p := range n.peers {
		if err := p.Send(msg); err != nil {
			mainLog.Warnf("failed to relay block to %s: %v", p.Remote(), err)
		}
	}
	return nil
}

func (n *node) peerHandlers() peer.Handlers {
	return peer.Handlers{
		OnGetPeers: func(p *peer.Peer) {
			good := n.addrMgr.GoodAddresses(50)
			list := make([]wire.PeerAddress, len(good))
			for i, ka := range good {
				list[i] = wire.PeerAddress{Host: ka.Host, Port: ka.Port}
			}
			_ = p.Send(&wire.MsgPeerList{Peers: list})
		},
		OnPeerList: func(_ *peer.Peer, msg *wire.MsgPeerList) {
			for _, a := range msg.Peers {
				_ = n.addrMgr.AddAddress(a.Host, a.Port)
			}
		},
		OnBlock: func(_ *peer.Peer, msg *wire.MsgBlock) {
			now := uint64(time.Now().Unix())
			result, err := n.submitter.Submit(&msg.Block, now, nil, 0)
			if err != nil {
				mainLog.Debugf("inbound block rejected: %v", err)
				n.metrics.BlocksRejected.WithLabelValues(ruleErrorCode(err)).Inc()
				return
			}
			n.metrics.BlocksAccepted.WithLabelValues(result.Phase.String()).Inc()
		},
	}
}

func (n *node) trackPeer(p *peer.Peer) {
	n.mu.Lock()
	n.peers[p.Remote()] = p
	n.mu.Unlock()
	n.metrics.PeerCount.Set(float64(len(n.peers)))

	go func() {
		if err := p.Run(); err != nil {
			mainLog.Debugf("peer %s exited: %v", p.Remote(), err)
		}
		n.mu.Lock()
		delete(n.peers, p.Remote())
		n.metrics.PeerCount.Set(float64(len(n.peers)))
		n.mu.Unlock()
		n.connMgr.Disconnected()
	}()
}

// serveInbound accepts and handshakes inbound connections until ctx is
// canceled.
func (n *node) serveInbound(ctx context.Context) error {
	ln, err := netpkg.Listen(n.opCfg.Listen, n.opCfg.maxPeers())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", n.opCfg.Listen, err)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	id := n.identity()
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go func() {
			height, _ := n.chain.Tip()
			conn, err := netpkg.Accept(nc, id, height)
			if err != nil {
				mainLog.Debugf("inbound handshake failed: %v", err)
				return
			}
			n.trackPeer(peer.New(conn, n.peerHandlers(), n.addrMgr))
		}()
	}
}

func (n *node) identity() netpkg.Identity {
	return netpkg.Identity{
		ProtocolVersion: 1,
		ChainID:         n.params.ChainID,
		GenesisHash:     n.params.GenesisHash,
		NetworkType:     n.params.Net,
	}
}

func (c *operatorConfig) maxPeers() int         { return 125 }
func (c *operatorConfig) maxOutboundPeers() int { return 8 }

func mustPort(s string) uint16 {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(n)
}

// metricsSampleInterval is how often serveMetrics refreshes the
// chain-derived gauges from the orchestrator's diagnostics snapshot.
const metricsSampleInterval = 5 * time.Second

// serveMetrics serves the Prometheus handler until ctx is canceled,
// periodically refreshing chain-derived gauges in the background.
func (n *node) serveMetrics(ctx context.Context) error {
	if n.opCfg.MetricsAddr == "" {
		return nil
	}

	go func() {
		ticker := time.NewTicker(metricsSampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := n.chain.Snapshot()
				n.metrics.ObserveChain(snap.Height, snap.Difficulty, snap.BlockTimeEMA, snap.TotalSupply.Float64())
			}
		}
	}()

	srv := &http.Server{Addr: n.opCfg.MetricsAddr, Handler: n.metrics.Handler()}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	mainLog.Infof("metrics listening on %s", n.opCfg.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runMiner drives the local CPU miner against successive candidate
// templates built from the current tip until ctx is canceled.
func (n *node) runMiner(ctx context.Context, minerAddress [wire.MinerAddressSize]byte) {
	m := cpuminer.NewMiner(cpuminer.Profile(n.opCfg.MiningProfile), 0)
	mainLog.Infof("starting CPU miner with %d workers (profile %s)", m.Workers(), n.opCfg.MiningProfile)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		height, tipHash := n.chain.Tip()
		nextHeight := height + 1
		difficulty := n.chain.NextDifficulty()
		target := blockchain.DifficultyToTarget(difficulty)
		epoch := pow.EpochForHeight(nextHeight)
		ds := n.dsManager.Current(epoch)

		// No mempool is wired yet,
		// so every mined block is transaction-less; its root must still
		// be committed into the header before mining since the root is
		// part of the hashed bytes.
		candidate := &wire.Block{Header: wire.BlockHeader{
			Version:      1,
			Height:       nextHeight,
			PrevHash:     tipHash,
			Timestamp:    uint64(time.Now().Unix()),
			Difficulty:   difficulty,
			MinerAddress: minerAddress,
		}}
		candidate.ComputeTransactionsRoot()

		result, err := m.Mine(ctx, &candidate.Header, ds, target, 0)
		n.metrics.MinerHashrate.Set(m.SampleHashrate(time.Now()))
		if err != nil || result == nil {
			continue
		}

		block := &wire.Block{Header: *result.Header}
		accepted, err := n.submitter.Submit(block, uint64(time.Now().Unix()), nil, 0)
		if err != nil {
			mainLog.Warnf("mined block rejected by our own chain: %v", err)
			n.metrics.BlocksRejected.WithLabelValues(ruleErrorCode(err)).Inc()
			continue
		}
		n.metrics.BlocksAccepted.WithLabelValues(accepted.Phase.String()).Inc()
	}
}

// ruleErrorCode extracts a blockchain.RuleError's code name for the
// blocks_rejected_total metric label, falling back to a generic label
// for errors that never reached consensus validation (I/O, decode).
func ruleErrorCode(err error) string {
	var rerr blockchain.RuleError
	if errors.As(err, &rerr) {
		return rerr.ErrorCode.String()
	}
	return "non_consensus"
}

func (n *node) close() error {
	return n.store.Close()
}
