// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import "github.com/dchest/siphash"

// ShortIDMask is applied to a 64-bit SipHash-2-4 output to produce the
// 48-bit compact-block short ID (spec open question: low 48 bits).
const ShortIDMask = 0x0000_FFFF_FFFF_FFFF

// goldenRatio64 is the 64-bit golden-ratio constant used to mix a single
// random nonce into the two SipHash keys, so compact-block announcers
// need only generate and transmit one 64-bit nonce per block.
const goldenRatio64 = 0x9E37_79B9_7F4A_7C15

// SipHashKeys derives the (k0, k1) SipHash-2-4 key pair for a compact
// block from its random nonce.
func SipHashKeys(nonce uint64) (k0, k1 uint64) {
	return nonce, nonce * goldenRatio64
}

// ShortID computes the 48-bit short ID of txID under the key derived from
// nonce. Two peers holding the same transaction and the same block nonce
// always agree on its short ID.
func ShortID(nonce uint64, txID Hash) uint64 {
	k0, k1 := SipHashKeys(nonce)
	full := siphash.Hash(k0, k1, txID[:])
	return full & ShortIDMask
}
