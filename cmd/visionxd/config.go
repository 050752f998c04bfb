// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/visionx-network/visionx/chaincfg"
	"github.com/visionx-network/visionx/cpuminer"
)

const (
	defaultConfigFilename = "visionxd.conf"
	defaultDataDirname     = "data"
	defaultLogFilename     = "visionxd.log"
	defaultLogLevel        = "info"
	defaultListenPort      = "9109"
	defaultMetricsAddr     = "127.0.0.1:9190"
)

// operatorConfig holds the non-consensus, operator-facing settings
// parsed from the command line and config file via go-flags. Every
// consensus-affecting setting instead comes from chaincfg.LoadConfigFromEnv.
type operatorConfig struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Directory to store chain-state data"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
	LogLevel   string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	Listen     string `long:"listen" description:"Address to listen for P2P connections"`
	MetricsAddr string `long:"metricsaddr" description:"Address to serve Prometheus metrics on, empty to disable"`

	Mine          bool   `long:"mine" description:"Enable the built-in CPU miner"`
	MiningProfile string `long:"miningprofile" description:"CPU miner worker-pool profile: laptop, balanced, beast"`
	MinerAddress  string `long:"mineraddress" description:"Hex-encoded 20-byte address credited with mined blocks"`

	Network string `long:"network" description:"Network to connect to: mainnet, testnet, simnet"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".visionxd")
	}
	return filepath.Join(home, ".visionxd")
}

func loadOperatorConfig() (*operatorConfig, error) {
	cfg := &operatorConfig{
		DataDir:       defaultDataDir(),
		LogLevel:      defaultLogLevel,
		Listen:        ":" + defaultListenPort,
		MetricsAddr:   defaultMetricsAddr,
		MiningProfile: string(cpuminer.ProfileBalanced),
		Network:       "testnet",
	}

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if ferr, ok := err.(*flags.Error); ok && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, "logs")
	}

	switch cfg.Network {
	case "mainnet", "testnet", "simnet":
	default:
		return nil, fmt.Errorf("unknown network %q", cfg.Network)
	}

	switch cpuminer.Profile(cfg.MiningProfile) {
	case cpuminer.ProfileLaptop, cpuminer.ProfileBalanced, cpuminer.ProfileBeast:
	default:
		return nil, fmt.Errorf("unknown mining profile %q", cfg.MiningProfile)
	}

	if cfg.Mine && cfg.MinerAddress == "" {
		return nil, fmt.Errorf("-mine requires -mineraddress")
	}

	return cfg, nil
}

// params resolves the chaincfg.Params for the selected network.
func (c *operatorConfig) params() *chaincfg.Params {
	switch c.Network {
	case "mainnet":
		return chaincfg.MainNetParams()
	case "simnet":
		return chaincfg.SimNetParams()
	default:
		return chaincfg.TestNetParams(0)
	}
}
