// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/visionx-network/visionx/addrmgr"
	"github.com/visionx-network/visionx/blockchain"
	"github.com/visionx-network/visionx/connmgr"
	"github.com/visionx-network/visionx/cpuminer"
	"github.com/visionx-network/visionx/database"
	netpkg "github.com/visionx-network/visionx/net"
	"github.com/visionx-network/visionx/peer"
)

// logRotator rotates the node's on-disk log file; it is assigned by
// initLogRotator and read by the backend's io.Writer.
var logRotator *rotator.Rotator

// logWriter forwards backend writes to both stdout and the rotator, the
// same dual-sink shape decred nodes use so operators see logs live
// while still keeping a rotated on-disk history.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

func initLogRotator(logFile string) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

var backendLog = slog.NewBackend(logWriter{})

var mainLog = backendLog.Logger("MAIN")

// subsystemLoggers maps each package's logging subsystem tag to its
// slog.Logger, letting setLogLevels apply per-package verbosity the
// way every decred-derived node does.
var subsystemLoggers = map[string]slog.Logger{
	"MAIN": mainLog,
	"CHNG": backendLog.Logger("CHNG"), // blockchain
	"DTBS": backendLog.Logger("DTBS"), // database
	"PEER": backendLog.Logger("PEER"), // peer
	"CMGR": backendLog.Logger("CMGR"), // connmgr
	"AMGR": backendLog.Logger("AMGR"), // addrmgr
	"MINR": backendLog.Logger("MINR"), // cpuminer
	"NETT": backendLog.Logger("NETT"), // net
}

func init() {
	blockchain.UseLogger(subsystemLoggers["CHNG"])
	database.UseLogger(subsystemLoggers["DTBS"])
	peer.UseLogger(subsystemLoggers["PEER"])
	connmgr.UseLogger(subsystemLoggers["CMGR"])
	addrmgr.UseLogger(subsystemLoggers["AMGR"])
	cpuminer.UseLogger(subsystemLoggers["MINR"])
	netpkg.UseLogger(subsystemLoggers["NETT"])
}

// setLogLevels applies levelStr (e.g. "debug", "info") to every
// registered subsystem logger.
func setLogLevels(levelStr string) error {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return errUnknownLogLevel(levelStr)
	}
	for _, l := range subsystemLoggers {
		l.SetLevel(level)
	}
	return nil
}

type errUnknownLogLevel string

func (e errUnknownLogLevel) Error() string {
	return "unknown log level: " + string(e)
}
