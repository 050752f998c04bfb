// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/visionx-network/visionx/wire"
)

// Consensus constants fixed for every network.
const (
	// TargetBlockTime is the LWMA-120 target block interval.
	TargetBlockTime = 2 * time.Second

	// MaxReorgDepth is the deepest reorg the fork-protection validator
	// will ever accept.
	MaxReorgDepth = 64

	// MaxTimeDrift bounds how far a block's timestamp may lead or lag
	// the system clock.
	MaxTimeDrift = 10 * time.Second

	// MTPSpan is the number of preceding blocks the median-time-past
	// rule considers.
	MTPSpan = 11

	// DatasetSizeMiB is the VisionX dataset size.
	DatasetSizeMiB = 64

	// MixIterations is the VisionX inner loop iteration count.
	MixIterations = 65536

	// WriteEvery is the VisionX dataset writeback interval.
	WriteEvery = 1024

	// EpochBlocks is the number of blocks sharing one PoW dataset.
	EpochBlocks = 32

	// HalvingInterval is the mining-reward halving period, in blocks.
	HalvingInterval = 2_102_400

	// MaxMiningBlock is the height at which the chain transitions from
	// the Mining phase to the Staking phase.
	MaxMiningBlock = 63_072_000

	// CashGenesisHeight is the mainnet-only height at which the CASH
	// airdrop table is applied, exactly once.
	CashGenesisHeight = 1_000_000

	// DefaultTestnetSunsetHeight is the testnet-only height from which
	// the chain rejects every block (ErrTestnetSunset). Reaching it
	// exports no key material and sets no persisted flag; a restart on
	// the same chain-data directory is not refused.
	DefaultTestnetSunsetHeight = 1_000_000

	// BaseMiningReward is the un-halved per-block mining reward, in
	// base units at 8 decimals (1000 tokens).
	BaseMiningReward = 1000 * 1e8

	// DefaultTitheAmount is the fixed per-block minted tithe (2 LAND at
	// 8 decimals).
	DefaultTitheAmount = 2 * 1e8

	// TitheBpsTotal is the basis-point denominator every tithe split
	// must sum to.
	TitheBpsTotal = 10000
)

// Default tithe basis-point split: miner=0, vault=5000,
// fund=3000, treasury=2000.
const (
	DefaultTitheMinerBps     = 0
	DefaultTitheVaultBps     = 5000
	DefaultTitheFundBps      = 3000
	DefaultTitheTreasuryBps  = 2000
	DefaultBaseStakingReward = 0 // default config mints nothing extra in Staking
)

// TitheSplit holds the basis-point distribution of the per-block tithe.
// Every field is validated to sum to TitheBpsTotal at load time.
type TitheSplit struct {
	MinerBps    uint32
	VaultBps    uint32
	FundBps     uint32
	TreasuryBps uint32
}

// Sum returns the total basis points across the split.
func (t TitheSplit) Sum() uint32 {
	return t.MinerBps + t.VaultBps + t.FundBps + t.TreasuryBps
}

// FoundationAddresses are the three immutable-per-run addresses loaded
// once at startup.
type FoundationAddresses struct {
	Vault     wire.Address
	Fund      wire.Address
	Treasury  wire.Address
}

// Params groups the parameters for one VisionX network.
type Params struct {
	Name        string
	Net         wire.NetworkType
	ChainID     [8]byte
	DefaultPort string
	P2PPort     string // HTTP API port P; P2P is P+1 unless overridden
	DNSSeeds    []string

	GenesisBlock *wire.Block
	GenesisHash  [32]byte

	// PoW / difficulty.
	InitialDifficulty uint64

	// Testnet-only sunset override.
	TestnetSunsetHeight uint64

	// ReduceMinDifficulty relaxes difficulty after a long silence on
	// testnets; VisionX's LWMA-120 already self-corrects, so this is
	// false on every network unless explicitly enabled for local
	// development.
	ReduceMinDifficulty bool
}

// Config is the fully-resolved, immutable startup configuration loaded
// once from environment variables.
type Config struct {
	Network              wire.NetworkType
	TestnetSunsetHeight  uint64
	MaxPeers             int
	MaxPeersPerSubnet    int
	TitheAmount          uint64
	Tithe                TitheSplit
	Foundation           FoundationAddresses
	MiningThreads        int
	MiningProfile        string
	SimdBatchSize        int
}

// env var names consumed by the core.
const (
	envNetwork             = "VISION_NETWORK"
	envTestnetSunsetHeight = "VISION_TESTNET_SUNSET_HEIGHT"
	envMaxPeers            = "VISION_MAX_PEERS"
	envMaxPeersPerSubnet   = "VISION_MAX_PEERS_PER_SUBNET"
	envTitheAmount         = "VISION_TOK_TITHE_AMOUNT"
	envTitheMinerBps       = "VISION_TOK_TITHE_MINER_BPS"
	envTitheVaultBps       = "VISION_TOK_TITHE_VAULT_BPS"
	envTitheFundBps        = "VISION_TOK_TITHE_FUND_BPS"
	envTitheTreasuryBps    = "VISION_TOK_TITHE_TREASURY_BPS"
	envVaultAddr           = "VISION_TOK_VAULT_ADDR"
	envFundAddr            = "VISION_TOK_FUND_ADDR"
	envTreasuryAddr        = "VISION_TOK_TREASURY_ADDR"
	envMiningThreads       = "VISION_MINING_THREADS"
	envMiningProfile       = "VISION_MINING_PROFILE"
	envSimdBatchSize       = "VISION_SIMD_BATCH_SIZE"
)

// LoadConfigFromEnv resolves a Config from the VISION_* environment
// variables, applying documented defaults for anything unset. It
// returns an error if the tithe split does not sum to 10000 bps or a
// foundation address is malformed, since those are consensus-affecting
// and must never silently default.
func LoadConfigFromEnv() (*Config, error) {
	cfg := &Config{
		Network:             wire.Testnet,
		TestnetSunsetHeight: DefaultTestnetSunsetHeight,
		MaxPeers:            100,
		MaxPeersPerSubnet:   20,
		TitheAmount:         DefaultTitheAmount,
		Tithe: TitheSplit{
			MinerBps:    DefaultTitheMinerBps,
			VaultBps:    DefaultTitheVaultBps,
			FundBps:     DefaultTitheFundBps,
			TreasuryBps: DefaultTitheTreasuryBps,
		},
		MiningProfile: "balanced",
		SimdBatchSize: 4,
	}

	if v := os.Getenv(envNetwork); v != "" {
		switch v {
		case "mainnet":
			cfg.Network = wire.Mainnet
		case "testnet":
			cfg.Network = wire.Testnet
		default:
			return nil, fmt.Errorf("chaincfg: unknown %s %q", envNetwork, v)
		}
	}
	if v, err := envUint64(envTestnetSunsetHeight); err != nil {
		return nil, err
	} else if v != nil {
		cfg.TestnetSunsetHeight = *v
	}
	if v, err := envInt(envMaxPeers); err != nil {
		return nil, err
	} else if v != nil {
		cfg.MaxPeers = *v
	}
	if v, err := envInt(envMaxPeersPerSubnet); err != nil {
		return nil, err
	} else if v != nil {
		cfg.MaxPeersPerSubnet = *v
	}
	if v, err := envUint64(envTitheAmount); err != nil {
		return nil, err
	} else if v != nil {
		cfg.TitheAmount = *v
	}
	if v, err := envUint32(envTitheMinerBps); err != nil {
		return nil, err
	} else if v != nil {
		cfg.Tithe.MinerBps = *v
	}
	if v, err := envUint32(envTitheVaultBps); err != nil {
		return nil, err
	} else if v != nil {
		cfg.Tithe.VaultBps = *v
	}
	if v, err := envUint32(envTitheFundBps); err != nil {
		return nil, err
	} else if v != nil {
		cfg.Tithe.FundBps = *v
	}
	if v, err := envUint32(envTitheTreasuryBps); err != nil {
		return nil, err
	} else if v != nil {
		cfg.Tithe.TreasuryBps = *v
	}
	if cfg.Tithe.Sum() != TitheBpsTotal {
		return nil, fmt.Errorf("chaincfg: tithe bps split sums to %d, want %d",
			cfg.Tithe.Sum(), TitheBpsTotal)
	}

	if v := os.Getenv(envVaultAddr); v != "" {
		addr, err := ParseAddress(v)
		if err != nil {
			return nil, fmt.Errorf("chaincfg: %s: %w", envVaultAddr, err)
		}
		cfg.Foundation.Vault = addr
	}
	if v := os.Getenv(envFundAddr); v != "" {
		addr, err := ParseAddress(v)
		if err != nil {
			return nil, fmt.Errorf("chaincfg: %s: %w", envFundAddr, err)
		}
		cfg.Foundation.Fund = addr
	}
	if v := os.Getenv(envTreasuryAddr); v != "" {
		addr, err := ParseAddress(v)
		if err != nil {
			return nil, fmt.Errorf("chaincfg: %s: %w", envTreasuryAddr, err)
		}
		cfg.Foundation.Treasury = addr
	}

	if v, err := envInt(envMiningThreads); err != nil {
		return nil, err
	} else if v != nil {
		cfg.MiningThreads = *v
	}
	if v := os.Getenv(envMiningProfile); v != "" {
		cfg.MiningProfile = v
	}
	if v, err := envInt(envSimdBatchSize); err != nil {
		return nil, err
	} else if v != nil {
		if *v < 1 || *v > 1024 {
			return nil, fmt.Errorf("chaincfg: %s must be in [1,1024], got %d", envSimdBatchSize, *v)
		}
		cfg.SimdBatchSize = *v
	}

	return cfg, nil
}

func envUint64(name string) (*uint64, error) {
	v := os.Getenv(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("chaincfg: %s: %w", name, err)
	}
	return &n, nil
}

func envUint32(name string) (*uint32, error) {
	v := os.Getenv(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("chaincfg: %s: %w", name, err)
	}
	n32 := uint32(n)
	return &n32, nil
}

func envInt(name string) (*int, error) {
	v := os.Getenv(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("chaincfg: %s: %w", name, err)
	}
	return &n, nil
}

// ParseAddress decodes a hex-encoded 32-byte address, the textual form
// used in env-var configuration.
func ParseAddress(s string) (wire.Address, error) {
	var addr wire.Address
	if len(s) != 64 {
		return addr, fmt.Errorf("address %q must be 64 hex characters", s)
	}
	for i := 0; i < 32; i++ {
		b, err := hexByte(s[2*i : 2*i+2])
		if err != nil {
			return addr, err
		}
		addr[i] = b
	}
	return addr, nil
}

func hexByte(s string) (byte, error) {
	var b byte
	_, err := fmt.Sscanf(s, "%02x", &b)
	return b, err
}
