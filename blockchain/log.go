// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/decred/slog"

// log is the package-scoped logger, disabled by default until the
// caller wires a backend with UseLogger (cmd/visionxd does this at
// startup).
var log = slog.Disabled

// UseLogger sets the package-wide logger used by this package.
func UseLogger(logger slog.Logger) {
	log = logger
}
