// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package net

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/visionx-network/visionx/wire"
)

func testIdentity() Identity {
	return Identity{
		ProtocolVersion: 1,
		ChainID:         [8]byte{'V', 'I', 'S', 'X', 'T', 'E', 'S', 'T'},
		NetworkType:     wire.Testnet,
		ListenPort:      9108,
	}
}

func TestHandshakeSucceedsOnMatchingChain(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	id := testIdentity()

	serverDone := make(chan error, 1)
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			serverDone <- err
			return
		}
		_, err = Accept(nc, id, 42)
		serverDone <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := Dial(ctx, ln.Addr().String(), id, 7)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	if err := <-serverDone; err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if client.ChainHeight != 42 {
		t.Fatalf("client.ChainHeight = %d, want 42", client.ChainHeight)
	}
}

func TestHandshakeRejectsChainMismatch(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	serverID := testIdentity()
	clientID := testIdentity()
	clientID.ChainID = [8]byte{'O', 'T', 'H', 'E', 'R', ' ', ' ', ' '}

	serverDone := make(chan error, 1)
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			serverDone <- err
			return
		}
		_, err = Accept(nc, serverID, 0)
		serverDone <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = Dial(ctx, ln.Addr().String(), clientID, 0)
	if err == nil {
		t.Fatal("Dial() with mismatched chain ID did not error")
	}
	<-serverDone
}

func TestSendReceiveRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	id := testIdentity()

	serverConn := make(chan *Conn, 1)
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		c, err := Accept(nc, id, 0)
		if err != nil {
			return
		}
		serverConn <- c
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := Dial(ctx, ln.Addr().String(), id, 0)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	server := <-serverConn
	defer server.Close()

	if err := client.Send(&wire.MsgPing{Nonce: 99}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	msg, err := server.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	ping, ok := msg.(*wire.MsgPing)
	if !ok || ping.Nonce != 99 {
		t.Fatalf("Receive() = %+v, want MsgPing{Nonce: 99}", msg)
	}
}
