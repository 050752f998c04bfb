// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package net drives the framed TCP transport VisionX peers speak:
// connection setup, the handshake state machine, and read/write
// deadlines layered on top of the wire package's message framing.
package net

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/visionx-network/visionx/chainhash"
	"github.com/visionx-network/visionx/wire"
)

// HandshakeTimeout bounds how long a freshly-dialed or freshly-accepted
// connection has to complete the handshake before it is dropped.
const HandshakeTimeout = 12 * time.Second

// Identity is the local node's handshake fingerprint.
type Identity struct {
	ProtocolVersion uint32
	ChainID         [8]byte
	GenesisHash     chainhash.Hash
	NetworkType     wire.NetworkType
	ListenPort      uint16
}

// Conn wraps a framed TCP connection to a peer that has completed the
// handshake.
type Conn struct {
	netConn     net.Conn
	PeerID      [16]byte
	ChainHeight uint64
	ListenPort  uint16
	Remote      string
}

// ErrChainMismatch is returned when a peer's handshake advertises a
// different chain than ours.
var ErrChainMismatch = errors.New("net: peer chain identity mismatch")

// ErrHandshakeTimeout is returned when the handshake does not complete
// within HandshakeTimeout.
var ErrHandshakeTimeout = errors.New("net: handshake timed out")

// Dial opens a TCP connection to addr and performs the outbound
// handshake.
func Dial(ctx context.Context, addr string, id Identity, chainHeight uint64) (*Conn, error) {
	d := net.Dialer{}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net: dial %s: %w", addr, err)
	}
	c, err := handshake(nc, id, chainHeight)
	if err != nil {
		nc.Close()
		return nil, err
	}
	c.Remote = addr
	return c, nil
}

// Accept performs the inbound handshake over an already-accepted
// connection (e.g. from a net.Listener.Accept call owned by the
// caller).
func Accept(nc net.Conn, id Identity, chainHeight uint64) (*Conn, error) {
	c, err := handshake(nc, id, chainHeight)
	if err != nil {
		nc.Close()
		return nil, err
	}
	c.Remote = nc.RemoteAddr().String()
	return c, nil
}

func handshake(nc net.Conn, id Identity, chainHeight uint64) (*Conn, error) {
	if err := nc.SetDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return nil, err
	}
	defer nc.SetDeadline(time.Time{})

	var peerID [16]byte
	if _, err := rand.Read(peerID[:]); err != nil {
		return nil, err
	}

	out := &wire.MsgHandshake{
		ProtocolVersion: id.ProtocolVersion,
		ChainID:         id.ChainID,
		GenesisHash:     id.GenesisHash,
		NetworkType:     id.NetworkType,
		ChainHeight:     chainHeight,
		PeerID:          peerID,
		ListenPort:      id.ListenPort,
	}
	if err := wire.WriteMessage(nc, out); err != nil {
		return nil, fmt.Errorf("net: send handshake: %w", err)
	}

	msg, err := wire.ReadMessage(nc)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrHandshakeTimeout
		}
		return nil, fmt.Errorf("net: read handshake: %w", err)
	}
	in, ok := msg.(*wire.MsgHandshake)
	if !ok {
		return nil, fmt.Errorf("net: expected handshake, got %s", msg.Tag())
	}
	if in.ChainID != id.ChainID || in.GenesisHash != id.GenesisHash || in.NetworkType != id.NetworkType {
		return nil, ErrChainMismatch
	}

	return &Conn{
		netConn:     nc,
		PeerID:      in.PeerID,
		ChainHeight: in.ChainHeight,
		ListenPort:  in.ListenPort,
	}, nil
}

// Send frames and writes msg to the peer.
func (c *Conn) Send(msg wire.Message) error {
	return wire.WriteMessage(c.netConn, msg)
}

// Receive blocks until it reads and decodes one framed message.
func (c *Conn) Receive() (wire.Message, error) {
	return wire.ReadMessage(c.netConn)
}

// SetDeadline applies a read/write deadline to the underlying
// connection, letting callers bound individual Send/Receive calls.
func (c *Conn) SetDeadline(t time.Time) error {
	return c.netConn.SetDeadline(t)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.netConn.Close()
}
