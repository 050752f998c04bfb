// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package connmgr maintains the outbound connection pool: it pulls
// candidate addresses from addrmgr, dials them through the net
// package's handshake, and retries with backoff on failure.
package connmgr

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/visionx-network/visionx/addrmgr"
	netconn "github.com/visionx-network/visionx/net"
)

// MaxRetryBackoff caps how long connmgr waits between successive
// dial attempts to the same address.
const MaxRetryBackoff = 5 * time.Minute

// initialRetryBackoff is the delay before the first retry after a
// failed dial.
const initialRetryBackoff = 5 * time.Second

// OnConnected is called with a handshake-complete connection each time
// connmgr establishes a new outbound peer.
type OnConnected func(conn *netconn.Conn)

// ConnManager drives outbound connection attempts up to a target
// peer count, pulling candidates from an addrmgr.Manager.
type ConnManager struct {
	addrMgr    *addrmgr.Manager
	identity   netconn.Identity
	targetPeer int
	onConnect  OnConnected

	mu       sync.Mutex
	active   int
	backoffs map[string]time.Duration
}

// New returns a connection manager that keeps up to targetPeers
// outbound connections alive.
func New(addrMgr *addrmgr.Manager, identity netconn.Identity, targetPeers int, onConnect OnConnected) *ConnManager {
	return &ConnManager{
		addrMgr:    addrMgr,
		identity:   identity,
		targetPeer: targetPeers,
		onConnect:  onConnect,
		backoffs:   make(map[string]time.Duration),
	}
}

// Run drives connection attempts until ctx is canceled, checking the
// peer count on every tick and dialing fresh candidates when under
// target.
func (c *ConnManager) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.fillOutbound(ctx)
		}
	}
}

func (c *ConnManager) fillOutbound(ctx context.Context) {
	c.mu.Lock()
	need := c.targetPeer - c.active
	c.mu.Unlock()
	if need <= 0 {
		return
	}

	candidates := c.addrMgr.GoodAddresses(need)
	for _, ka := range candidates {
		ka := ka
		go c.dialOne(ctx, ka.Host, ka.Port)
	}
}

func (c *ConnManager) dialOne(ctx context.Context, host string, port uint16) {
	addr := netJoin(host, port)

	c.mu.Lock()
	backoff := c.backoffs[addr]
	c.mu.Unlock()
	if backoff > 0 {
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := netconn.Dial(dialCtx, addr, c.identity, 0)
	c.addrMgr.RecordDialResult(host, port, err == nil)

	if err != nil {
		c.mu.Lock()
		next := c.backoffs[addr] * 2
		if next == 0 {
			next = initialRetryBackoff
		}
		if next > MaxRetryBackoff {
			next = MaxRetryBackoff
		}
		c.backoffs[addr] = next
		c.mu.Unlock()
		log.Debugf("dial %s failed, backing off %s: %v", addr, next, err)
		return
	}

	log.Infof("connected to %s", addr)
	c.mu.Lock()
	delete(c.backoffs, addr)
	c.active++
	c.mu.Unlock()

	if c.onConnect != nil {
		c.onConnect(conn)
	}
}

// Disconnected tells the manager one outbound slot has freed up, e.g.
// after a peer's Run loop returns.
func (c *ConnManager) Disconnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active > 0 {
		c.active--
	}
}

func netJoin(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}
