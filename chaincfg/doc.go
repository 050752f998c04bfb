// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the VisionX consensus constants, the
// per-network parameter sets (mainnet/testnet), and the startup
// configuration (foundation addresses, tithe split, peer limits) loaded
// once from the environment.
//
// A (typically global) var may be assigned the address of one of the
// standard Params vars for use as the application's active network.
//
//	var activeNetParams = chaincfg.MainNetParams()
package chaincfg
