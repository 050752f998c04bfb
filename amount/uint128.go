// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package amount implements the saturating 128-bit unsigned integer
// VisionX uses for every on-chain balance, vault sub-account, and
// running supply figure. 64-bit counters are wide enough for any one
// block's reward arithmetic but not for a cumulative ledger that never
// resets, so the persistence boundary widens into this type rather
// than risk a silent wraparound after enough blocks.
package amount

import "math/bits"

// Uint128 is an unsigned 128-bit integer split into high and low
// 64-bit halves, little-endian word order (Lo is the least
// significant half).
type Uint128 struct {
	Hi, Lo uint64
}

// maxUint128 is 2^128 - 1, the saturation ceiling for Add.
var maxUint128 = Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}

// FromUint64 widens v into a Uint128.
func FromUint64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Add returns x+y, saturating at 2^128-1 instead of wrapping on
// overflow.
func (x Uint128) Add(y Uint128) Uint128 {
	lo, carry := bits.Add64(x.Lo, y.Lo, 0)
	hi, carry2 := bits.Add64(x.Hi, y.Hi, carry)
	if carry2 != 0 {
		return maxUint128
	}
	return Uint128{Hi: hi, Lo: lo}
}

// Sub returns x-y, saturating at 0 instead of wrapping on underflow.
func (x Uint128) Sub(y Uint128) Uint128 {
	if x.Cmp(y) < 0 {
		return Uint128{}
	}
	lo, borrow := bits.Sub64(x.Lo, y.Lo, 0)
	hi, _ := bits.Sub64(x.Hi, y.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}
}

// Cmp returns -1, 0, or 1 depending on whether x is less than, equal
// to, or greater than y.
func (x Uint128) Cmp(y Uint128) int {
	switch {
	case x.Hi != y.Hi:
		if x.Hi < y.Hi {
			return -1
		}
		return 1
	case x.Lo != y.Lo:
		if x.Lo < y.Lo {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Float64 approximates the value as a float64. Precision beyond 2^53
// is lost, which is acceptable for metrics export but not for
// consensus-affecting arithmetic.
func (x Uint128) Float64() float64 {
	const two64 = 18446744073709551616.0
	return float64(x.Hi)*two64 + float64(x.Lo)
}

// PutLE writes x into buf in little-endian form (low half first). buf
// must be at least 16 bytes.
func (x Uint128) PutLE(buf []byte) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(x.Lo >> (8 * i))
		buf[8+i] = byte(x.Hi >> (8 * i))
	}
}

// Uint128LE decodes a little-endian 16-byte buffer produced by PutLE.
func Uint128LE(buf []byte) Uint128 {
	var lo, hi uint64
	for i := 0; i < 8; i++ {
		lo |= uint64(buf[i]) << (8 * i)
		hi |= uint64(buf[8+i]) << (8 * i)
	}
	return Uint128{Hi: hi, Lo: lo}
}
