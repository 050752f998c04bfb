// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package amount

import "testing"

func TestUint128AddSaturates(t *testing.T) {
	sum := maxUint128.Add(FromUint64(1))
	if sum.Cmp(maxUint128) != 0 {
		t.Fatalf("Add() = %+v, want saturation at max", sum)
	}
}

func TestUint128AddCarries(t *testing.T) {
	x := Uint128{Lo: ^uint64(0)}
	sum := x.Add(FromUint64(1))
	want := Uint128{Hi: 1, Lo: 0}
	if sum.Cmp(want) != 0 {
		t.Fatalf("Add() = %+v, want %+v", sum, want)
	}
}

func TestUint128LERoundTrip(t *testing.T) {
	want := Uint128{Hi: 0x0102030405060708, Lo: 0x1112131415161718}
	buf := make([]byte, 16)
	want.PutLE(buf)
	got := Uint128LE(buf)
	if got.Cmp(want) != 0 {
		t.Fatalf("Uint128LE(PutLE()) = %+v, want %+v", got, want)
	}
}

func TestUint128SubSaturatesAtZero(t *testing.T) {
	got := FromUint64(5).Sub(FromUint64(10))
	if got.Cmp(Uint128{}) != 0 {
		t.Fatalf("Sub() = %+v, want zero", got)
	}
}

func TestUint128SubBorrows(t *testing.T) {
	x := Uint128{Hi: 1, Lo: 0}
	got := x.Sub(FromUint64(1))
	want := Uint128{Lo: ^uint64(0)}
	if got.Cmp(want) != 0 {
		t.Fatalf("Sub() = %+v, want %+v", got, want)
	}
}

func TestUint128Cmp(t *testing.T) {
	a := FromUint64(5)
	b := FromUint64(10)
	if a.Cmp(b) >= 0 {
		t.Fatalf("Cmp() = %d, want negative", a.Cmp(b))
	}
	if b.Cmp(a) <= 0 {
		t.Fatalf("Cmp() = %d, want positive", b.Cmp(a))
	}
	if a.Cmp(a) != 0 {
		t.Fatalf("Cmp() = %d, want 0", a.Cmp(a))
	}
}
