// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"context"
	"net"
	"testing"
	"time"

	netconn "github.com/visionx-network/visionx/net"
	"github.com/visionx-network/visionx/wire"
)

func dialPair(t *testing.T) (*netconn.Conn, *netconn.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	id := netconn.Identity{ProtocolVersion: 1, NetworkType: wire.Testnet}

	serverCh := make(chan *netconn.Conn, 1)
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		c, err := netconn.Accept(nc, id, 0)
		if err != nil {
			return
		}
		serverCh <- c
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := netconn.Dial(ctx, ln.Addr().String(), id, 0)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	server := <-serverCh
	return client, server
}

func TestPeerAnswersPingWithPong(t *testing.T) {
	client, server := dialPair(t)
	defer client.Close()

	p := New(server, Handlers{}, nil)
	go p.Run()
	defer p.Stop()

	if err := client.Send(&wire.MsgPing{Nonce: 7}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	client.SetDeadline(time.Now().Add(2 * time.Second))
	msg, err := client.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	pong, ok := msg.(*wire.MsgPong)
	if !ok || pong.Nonce != 7 {
		t.Fatalf("Receive() = %+v, want MsgPong{Nonce: 7}", msg)
	}
}

func TestPeerDispatchesGetPeers(t *testing.T) {
	client, server := dialPair(t)
	defer client.Close()

	called := make(chan struct{}, 1)
	p := New(server, Handlers{
		OnGetPeers: func(*Peer) { called <- struct{}{} },
	}, nil)
	go p.Run()
	defer p.Stop()

	if err := client.Send(&wire.MsgGetPeers{}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("OnGetPeers handler was not invoked")
	}
}
