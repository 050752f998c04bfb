// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr maintains the peer directory VisionX nodes gossip
// and dial from: known addresses, subnet diversity, bans, and a simple
// reputation score.
package addrmgr

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/decred/slog"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger used by the addrmgr package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// KnownAddress is one entry in the peer directory.
type KnownAddress struct {
	Host        string
	Port        uint16
	LastSeen    time.Time
	LastAttempt time.Time
	Attempts    int
	Reputation  int
}

// Key returns the "host:port" form used to index this address.
func (ka *KnownAddress) Key() string {
	return net.JoinHostPort(ka.Host, fmt.Sprintf("%d", ka.Port))
}

// subnetGroup buckets an address by its /16 (IPv4) or /32 (IPv6)
// prefix, the same coarse diversity heuristic dcrd's addrmgr uses to
// avoid a single network operator dominating a node's peer set.
func subnetGroup(host string) string {
	ip := net.ParseIP(host)
	if ip == nil {
		return host
	}
	if v4 := ip.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d", v4[0], v4[1])
	}
	return ip.Mask(net.CIDRMask(32, 128)).String()
}

// reputationBanThreshold is the score at or below which an address is
// treated as effectively banned until its ban entry expires.
const reputationBanThreshold = -100

// reputationGoodDial is the score bump a successful connection earns.
const reputationGoodDial = 1

// reputationFailedDial is the score penalty a failed connection
// attempt costs.
const reputationFailedDial = -5

// defaultMaxPerSubnet caps how many addresses from the same subnet
// group the manager will hand out in one GoodAddresses call, enforcing
// subnet diversity in outbound connection selection.
const defaultMaxPerSubnet = 2

// BanStore persists the ban list so it survives a node restart. The
// teacher's addrmgr keeps bans in memory only; database.Store
// implements this to back them with banned_peer: entries.
type BanStore interface {
	BanPeer(host string, expiresAt uint64) error
	LoadBans() (map[string]uint64, error)
	PruneExpiredBans(now uint64) (int, error)
}

// Manager is a concurrency-safe peer directory.
type Manager struct {
	mu           sync.RWMutex
	addrs        map[string]*KnownAddress
	bans         map[string]time.Time // host (no port) -> ban expiry
	maxPerSubnet int
	store        BanStore
}

// New returns an empty peer directory with no ban persistence.
func New() *Manager {
	return &Manager{
		addrs:        make(map[string]*KnownAddress),
		bans:         make(map[string]time.Time),
		maxPerSubnet: defaultMaxPerSubnet,
	}
}

// NewWithStore returns a peer directory backed by store: expired bans
// are swept from the database first, then whatever remains is loaded
// into memory so previously banned hosts stay banned across restarts.
func NewWithStore(store BanStore) (*Manager, error) {
	m := New()
	m.store = store

	now := uint64(time.Now().Unix())
	pruned, err := store.PruneExpiredBans(now)
	if err != nil {
		return nil, fmt.Errorf("addrmgr: prune expired bans: %w", err)
	}
	if pruned > 0 {
		log.Infof("pruned %d expired ban(s) on startup", pruned)
	}

	bans, err := store.LoadBans()
	if err != nil {
		return nil, fmt.Errorf("addrmgr: load bans: %w", err)
	}
	for host, expiresAt := range bans {
		m.bans[host] = time.Unix(int64(expiresAt), 0)
	}
	return m, nil
}

// ErrInvalidAddress is returned when a gossiped peer address fails
// validation.
var ErrInvalidAddress = errors.New("addrmgr: invalid peer address")

// ValidateAddress checks that host:port is a syntactically valid,
// routable-looking peer address before it is ever added to the
// directory.
func ValidateAddress(host string, port uint16) error {
	if port == 0 {
		return fmt.Errorf("%w: port is zero", ErrInvalidAddress)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsUnspecified() || ip.IsMulticast() {
			return fmt.Errorf("%w: %s is not a unicast address", ErrInvalidAddress, host)
		}
		return nil
	}
	// Not a bare IP; require it parse as a DNS hostname via a dummy URL,
	// which rejects embedded whitespace, control characters, etc.
	if _, err := url.Parse("tcp://" + net.JoinHostPort(host, "0")); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAddress, host, err)
	}
	return nil
}

// AddAddress inserts or refreshes a peer address in the directory.
// Banned addresses are rejected.
func (m *Manager) AddAddress(host string, port uint16) error {
	if err := ValidateAddress(host, port); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, banned := m.bans[host]; banned {
		if time.Now().Before(expiry) {
			return fmt.Errorf("addrmgr: %s is banned until %s", host, expiry)
		}
		delete(m.bans, host)
	}

	key := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	if existing, ok := m.addrs[key]; ok {
		existing.LastSeen = time.Now()
		return nil
	}
	m.addrs[key] = &KnownAddress{Host: host, Port: port, LastSeen: time.Now()}
	return nil
}

// RecordDialResult updates an address's reputation after a connection
// attempt, banning it outright once its score crosses the threshold.
func (m *Manager) RecordDialResult(host string, port uint16, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	ka, ok := m.addrs[key]
	if !ok {
		return
	}
	ka.LastAttempt = time.Now()
	ka.Attempts++
	if success {
		ka.Reputation += reputationGoodDial
		ka.LastSeen = time.Now()
		return
	}
	ka.Reputation += reputationFailedDial
	if ka.Reputation <= reputationBanThreshold {
		m.banLocked(host, 24*time.Hour)
	}
}

// Ban bans host (all ports) for the given duration.
func (m *Manager) Ban(host string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banLocked(host, duration)
}

func (m *Manager) banLocked(host string, duration time.Duration) {
	expiry := time.Now().Add(duration)
	m.bans[host] = expiry
	log.Infof("banned %s for %s", host, duration)

	if m.store == nil {
		return
	}
	if err := m.store.BanPeer(host, uint64(expiry.Unix())); err != nil {
		log.Warnf("failed to persist ban for %s: %v", host, err)
	}
}

// IsBanned reports whether host is currently banned.
func (m *Manager) IsBanned(host string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expiry, ok := m.bans[host]
	return ok && time.Now().Before(expiry)
}

// GoodAddresses returns up to n candidate addresses for outbound
// dialing, preferring higher reputation and enforcing subnet
// diversity so no single /16 (or IPv6 /32) supplies more than
// maxPerSubnet entries.
func (m *Manager) GoodAddresses(n int) []*KnownAddress {
	m.mu.RLock()
	candidates := make([]*KnownAddress, 0, len(m.addrs))
	for _, ka := range m.addrs {
		if _, banned := m.bans[ka.Host]; banned {
			continue
		}
		candidates = append(candidates, ka)
	}
	m.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Reputation > candidates[j].Reputation
	})

	perSubnet := make(map[string]int)
	out := make([]*KnownAddress, 0, n)
	for _, ka := range candidates {
		if len(out) >= n {
			break
		}
		group := subnetGroup(ka.Host)
		if perSubnet[group] >= m.maxPerSubnet {
			continue
		}
		perSubnet[group]++
		out = append(out, ka)
	}
	return out
}

// Count returns the number of addresses currently known.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.addrs)
}
