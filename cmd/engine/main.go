// Command engine is the CLI entry point: a thin wrapper around
// internal/cli that parses flags, resolves configuration, and drives
// internal/engine.
package main

import (
	"os"

	"github.com/provenance-engine/engine/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
