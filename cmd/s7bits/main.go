package main

import (
	"os"

	"github.com/spacemeshos/s7bits/cmd/s7bits/cmd"
)

var (
	// Version is the version of the binary.
	Version = "0.0.0"

	// Commit is the commit hash of the binary.
	Commit = ""
)

func main() {
	cmd.Version = Version
	cmd.Commit = Commit
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
