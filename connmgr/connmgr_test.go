// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/visionx-network/visionx/addrmgr"
	netconn "github.com/visionx-network/visionx/net"
	"github.com/visionx-network/visionx/wire"
)

func TestConnManagerDialsKnownAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	id := netconn.Identity{ProtocolVersion: 1, NetworkType: wire.Testnet}

	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		netconn.Accept(nc, id, 0)
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("SplitHostPort() error = %v", err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		t.Fatalf("ParseUint() error = %v", err)
	}

	mgr := addrmgr.New()
	if err := mgr.AddAddress(host, uint16(port)); err != nil {
		t.Fatalf("AddAddress() error = %v", err)
	}

	connected := make(chan *netconn.Conn, 1)
	cm := New(mgr, id, 1, func(c *netconn.Conn) { connected <- c })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go cm.Run(ctx, 20*time.Millisecond)

	select {
	case c := <-connected:
		c.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("connmgr did not establish an outbound connection")
	}
}
