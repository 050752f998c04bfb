// Copyright (c) 2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// defaultApp is the default application assumed when either no arguments
// are specified or the first argument starts with a -.
const defaultApp = "visionxd"

// argN either returns the arguments at the provided position within the given
// args array when it exists or an empty string otherwise.
func argN(args []string, n int) string {
	if len(args) > n {
		return args[n]
	}
	return ""
}

// prepend return a new slice that consists of the provided value followed by
// the given args.
func prepend(args []string, val string) []string {
	newArgs := make([]string, 0, len(args)+1)
	newArgs = append(newArgs, val)
	newArgs = append(newArgs, args...)
	return newArgs
}

func main() {
	// Name of the invoking executable. This should typically be "entrypoint".
	exeName := filepath.Base(os.Args[0])

	// Local copy of supplied arguments without the invoking process. This
	// allows the params to be modified independently below as needed.
	args := make([]string, len(os.Args)-1)
	copy(args, os.Args[1:])

	// Assume the provided arguments are for the node when the first
	// parameter starts with a dash.
	if arg0 := argN(args, 0); arg0 == "" || arg0[0] == '-' {
		fmt.Printf("%s: assuming arguments for %s\n", exeName, defaultApp)
		args = prepend(args, defaultApp)
	}

	// Additional setup when running in a container.
	arg0 := argN(args, 0)
	args = args[1:]
	if arg0 == "visionxd" {
		// Determine the data directory based on the environment variable
		// the image's Dockerfile sets, defaulting to the node's own
		// baked-in default if it is unset.
		if dataDir := os.Getenv("VISIONX_DATA"); dataDir != "" {
			args = append(args, fmt.Sprintf("--datadir=%s", filepath.Join(dataDir, ".visionxd")))
		}
		if os.Getenv("VISIONX_NETWORK") != "" {
			args = append(args, fmt.Sprintf("--network=%s", os.Getenv("VISIONX_NETWORK")))
		}
	}

	// Run the command with the given arguments while redirecting stdin, stdout,
	// and stderr to the parent process.
	cmd := exec.Command(arg0, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ProcessState.ExitCode())
	}
}
