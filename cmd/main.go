// cmd/main.go - Program entry
package main

import (
	"fmt"
	"os"

	"codebase-docgen/internal/cli/commands"
)

var (
	// set by the linker during build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
