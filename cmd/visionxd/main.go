// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command visionxd runs a VisionX full node: it validates and extends
// the chain, serves the P2P protocol, and optionally mines new blocks
// with the built-in CPU miner.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/visionx-network/visionx/chaincfg"
	"github.com/visionx-network/visionx/wire"
)

// connMgrTick is how often the outbound connection manager checks
// whether it needs to dial more peers.
const connMgrTick = 10 * time.Second

func run() error {
	opCfg, err := loadOperatorConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := initLogRotator(filepath.Join(opCfg.LogDir, defaultLogFilename)); err != nil {
		return fmt.Errorf("init log rotator: %w", err)
	}
	if err := setLogLevels(opCfg.LogLevel); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	chainCfg, err := chaincfg.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("load consensus config: %w", err)
	}

	n, err := newNode(opCfg, chainCfg)
	if err != nil {
		return fmt.Errorf("init node: %w", err)
	}
	defer n.close()

	n.seedAddresses()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		mainLog.Infof("shutting down")
		cancel()
	}()

	go n.connMgr.Run(ctx, connMgrTick)

	go func() {
		if err := n.serveInbound(ctx); err != nil {
			mainLog.Errorf("inbound listener stopped: %v", err)
		}
	}()

	go func() {
		if err := n.serveMetrics(ctx); err != nil {
			mainLog.Errorf("metrics listener stopped: %v", err)
		}
	}()

	if opCfg.Mine {
		minerAddr, err := parseMinerAddress(opCfg.MinerAddress)
		if err != nil {
			return fmt.Errorf("invalid -mineraddress: %w", err)
		}
		go n.runMiner(ctx, minerAddr)
	}

	height, hash := n.chain.Tip()
	mainLog.Infof("VisionX node started on %s at height %d (tip %s)", opCfg.Network, height, hash)

	<-ctx.Done()
	return nil
}

// parseMinerAddress decodes the hex-encoded 20-byte address credited
// with blocks mined by the built-in CPU miner. This is distinct from
// chaincfg.ParseAddress, which decodes the 32-byte addresses used
// elsewhere in consensus state.
func parseMinerAddress(s string) ([wire.MinerAddressSize]byte, error) {
	var addr [wire.MinerAddressSize]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return addr, fmt.Errorf("mineraddress must be hex: %w", err)
	}
	if len(b) != wire.MinerAddressSize {
		return addr, fmt.Errorf("mineraddress must be %d bytes, got %d", wire.MinerAddressSize, len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
