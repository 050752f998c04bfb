// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the package-wide logger used by the peer package.
func UseLogger(logger slog.Logger) {
	log = logger
}
