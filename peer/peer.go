// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer drives one connected peer's message loop: ping/pong
// keepalive, inbound message dispatch, and outbound queuing, sitting on
// top of the net package's framed connection and feeding the addrmgr
// peer directory.
package peer

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/visionx-network/visionx/addrmgr"
	netconn "github.com/visionx-network/visionx/net"
	"github.com/visionx-network/visionx/wire"
)

// PingInterval is how often an idle peer is probed with a keepalive
// ping.
const PingInterval = 30 * time.Second

// PingTimeout is not consulted by Run: a ping still unanswered when the
// next PingInterval tick fires ends the peer's Run loop.
const PingTimeout = 15 * time.Second

// Handlers is the set of callbacks a Peer dispatches inbound messages
// to. A nil handler silently drops that message type.
type Handlers struct {
	OnGetPeers         func(p *Peer)
	OnPeerList         func(p *Peer, msg *wire.MsgPeerList)
	OnBlockAnnouncement func(p *Peer, msg *wire.MsgBlockAnnouncement)
	OnGetBlockTxns     func(p *Peer, msg *wire.MsgGetBlockTxns)
	OnBlockTxns        func(p *Peer, msg *wire.MsgBlockTxns)
	OnGetHeaders       func(p *Peer, msg *wire.MsgGetHeaders)
	OnHeaders          func(p *Peer, msg *wire.MsgHeaders)
	OnGetBlock         func(p *Peer, msg *wire.MsgGetBlock)
	OnBlock            func(p *Peer, msg *wire.MsgBlock)
	OnTx               func(p *Peer, msg *wire.MsgTx)
	OnGetMempool       func(p *Peer)
	OnMempool          func(p *Peer, msg *wire.MsgMempool)
}

// Peer wraps one connected, handshake-complete remote node.
type Peer struct {
	conn     *netconn.Conn
	handlers Handlers
	addrMgr  *addrmgr.Manager

	mu            sync.Mutex
	lastPingNonce uint64
	awaitingPong  bool
	lastPongAt    time.Time

	quit chan struct{}
	done chan struct{}
}

// New wraps an already handshake-complete connection in a Peer, ready
// for Run.
func New(conn *netconn.Conn, handlers Handlers, addrMgr *addrmgr.Manager) *Peer {
	return &Peer{
		conn:     conn,
		handlers: handlers,
		addrMgr:  addrMgr,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Remote returns the peer's dialed or accepted address.
func (p *Peer) Remote() string { return p.conn.Remote }

// ChainHeight returns the chain height the peer advertised at
// handshake time.
func (p *Peer) ChainHeight() uint64 { return p.conn.ChainHeight }

// Send frames and writes msg to the peer.
func (p *Peer) Send(msg wire.Message) error {
	return p.conn.Send(msg)
}

// Run drives the peer's read loop and keepalive ticker until the
// connection fails or Stop is called. It blocks, so callers run it on
// its own goroutine.
func (p *Peer) Run() error {
	defer close(p.done)

	readErrs := make(chan error, 1)
	inbound := make(chan wire.Message, 16)
	go p.readLoop(inbound, readErrs)

	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.quit:
			return nil
		case err := <-readErrs:
			log.Debugf("peer %s disconnected: %v", p.conn.Remote, err)
			if p.addrMgr != nil {
				host, port := splitRemote(p.conn.Remote)
				p.addrMgr.RecordDialResult(host, port, false)
			}
			return err
		case msg := <-inbound:
			p.dispatch(msg)
		case <-ticker.C:
			if err := p.sendPing(); err != nil {
				return err
			}
		}
	}
}

func (p *Peer) readLoop(out chan<- wire.Message, errs chan<- error) {
	for {
		msg, err := p.conn.Receive()
		if err != nil {
			errs <- err
			return
		}
		select {
		case out <- msg:
		case <-p.quit:
			return
		}
	}
}

func (p *Peer) sendPing() error {
	var nonceBuf [8]byte
	if _, err := rand.Read(nonceBuf[:]); err != nil {
		return err
	}
	nonce := binary.LittleEndian.Uint64(nonceBuf[:])

	p.mu.Lock()
	if p.awaitingPong {
		p.mu.Unlock()
		return fmt.Errorf("peer: %s did not answer previous ping within %s", p.conn.Remote, PingInterval)
	}
	p.lastPingNonce = nonce
	p.awaitingPong = true
	p.mu.Unlock()

	return p.conn.Send(&wire.MsgPing{Nonce: nonce})
}

func (p *Peer) dispatch(msg wire.Message) {
	switch m := msg.(type) {
	case *wire.MsgPing:
		_ = p.conn.Send(&wire.MsgPong{Nonce: m.Nonce})
	case *wire.MsgPong:
		p.mu.Lock()
		if p.awaitingPong && m.Nonce == p.lastPingNonce {
			p.awaitingPong = false
			p.lastPongAt = time.Now()
		}
		p.mu.Unlock()
	case *wire.MsgGetPeers:
		if p.handlers.OnGetPeers != nil {
			p.handlers.OnGetPeers(p)
		}
	case *wire.MsgPeerList:
		if p.handlers.OnPeerList != nil {
			p.handlers.OnPeerList(p, m)
		}
	case *wire.MsgBlockAnnouncement:
		if p.handlers.OnBlockAnnouncement != nil {
			p.handlers.OnBlockAnnouncement(p, m)
		}
	case *wire.MsgGetBlockTxns:
		if p.handlers.OnGetBlockTxns != nil {
			p.handlers.OnGetBlockTxns(p, m)
		}
	case *wire.MsgBlockTxns:
		if p.handlers.OnBlockTxns != nil {
			p.handlers.OnBlockTxns(p, m)
		}
	case *wire.MsgGetHeaders:
		if p.handlers.OnGetHeaders != nil {
			p.handlers.OnGetHeaders(p, m)
		}
	case *wire.MsgHeaders:
		if p.handlers.OnHeaders != nil {
			p.handlers.OnHeaders(p, m)
		}
	case *wire.MsgGetBlock:
		if p.handlers.OnGetBlock != nil {
			p.handlers.OnGetBlock(p, m)
		}
	case *wire.MsgBlock:
		if p.handlers.OnBlock != nil {
			p.handlers.OnBlock(p, m)
		}
	case *wire.MsgTx:
		if p.handlers.OnTx != nil {
			p.handlers.OnTx(p, m)
		}
	case *wire.MsgGetMempool:
		if p.handlers.OnGetMempool != nil {
			p.handlers.OnGetMempool(p)
		}
	case *wire.MsgMempool:
		if p.handlers.OnMempool != nil {
			p.handlers.OnMempool(p, m)
		}
	}
}

// Stop signals Run to exit and closes the underlying connection.
func (p *Peer) Stop() {
	select {
	case <-p.quit:
	default:
		close(p.quit)
	}
	p.conn.Close()
	<-p.done
}

func splitRemote(remote string) (host string, port uint16) {
	h, p, err := net.SplitHostPort(remote)
	if err != nil {
		return remote, 0
	}
	n, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		return h, 0
	}
	return h, uint16(n)
}
