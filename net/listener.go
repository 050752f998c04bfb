// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package net

import (
	"net"

	"golang.org/x/net/netutil"
)

// Listen opens a TCP listener on addr bounded to maxInbound
// simultaneous connections, so a flood of inbound dials can't exhaust
// file descriptors before the handshake/ban logic ever runs.
func Listen(addr string, maxInbound int) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if maxInbound <= 0 {
		return ln, nil
	}
	return netutil.LimitListener(ln, maxInbound), nil
}
