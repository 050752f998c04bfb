// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "testing"

func TestValidateAddressRejectsZeroPort(t *testing.T) {
	if err := ValidateAddress("1.2.3.4", 0); err == nil {
		t.Fatal("ValidateAddress() with port 0 did not error")
	}
}

func TestValidateAddressRejectsUnspecifiedIP(t *testing.T) {
	if err := ValidateAddress("0.0.0.0", 9108); err == nil {
		t.Fatal("ValidateAddress() with 0.0.0.0 did not error")
	}
}

func TestValidateAddressAcceptsHostnameAndIP(t *testing.T) {
	if err := ValidateAddress("seed.visionx.network", 9108); err != nil {
		t.Fatalf("ValidateAddress(hostname) error = %v", err)
	}
	if err := ValidateAddress("203.0.113.5", 9108); err != nil {
		t.Fatalf("ValidateAddress(ip) error = %v", err)
	}
}

func TestAddAddressAndGoodAddresses(t *testing.T) {
	m := New()
	if err := m.AddAddress("203.0.113.1", 9108); err != nil {
		t.Fatalf("AddAddress() error = %v", err)
	}
	if err := m.AddAddress("203.0.113.2", 9108); err != nil {
		t.Fatalf("AddAddress() error = %v", err)
	}
	if m.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", m.Count())
	}

	good := m.GoodAddresses(10)
	if len(good) != 2 {
		t.Fatalf("GoodAddresses() returned %d addresses, want 2", len(good))
	}
}

func TestGoodAddressesEnforcesSubnetDiversity(t *testing.T) {
	m := New()
	// All four addresses share the 203.0.*.* /16 group.
	for i := 1; i <= 4; i++ {
		host := "203.0.113." + string(rune('0'+i))
		if err := m.AddAddress(host, 9108); err != nil {
			t.Fatalf("AddAddress(%s) error = %v", host, err)
		}
	}

	good := m.GoodAddresses(10)
	if len(good) != defaultMaxPerSubnet {
		t.Fatalf("GoodAddresses() returned %d addresses from one subnet, want %d", len(good), defaultMaxPerSubnet)
	}
}

func TestRecordDialResultBansAfterRepeatedFailure(t *testing.T) {
	m := New()
	if err := m.AddAddress("203.0.113.9", 9108); err != nil {
		t.Fatalf("AddAddress() error = %v", err)
	}

	for i := 0; i < 25; i++ {
		m.RecordDialResult("203.0.113.9", 9108, false)
	}

	if !m.IsBanned("203.0.113.9") {
		t.Fatal("address was not banned after repeated dial failures")
	}
}

func TestZeroDurationBanDoesNotRejectAdd(t *testing.T) {
	m := New()
	m.Ban("198.51.100.1", 0) // already expired, duration 0 means "ban at call time"
	_ = m.AddAddress("198.51.100.1", 9108)
	// A zero duration ban expires immediately, so the address should end
	// up tracked rather than rejected.
	if m.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after zero-duration ban expired", m.Count())
	}
}
