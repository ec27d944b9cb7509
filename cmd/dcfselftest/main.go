// Command dcfselftest exercises the dcfcodec library end to end: it builds
// and decodes a set of built-in (or TOML-configured) scenarios, and its serve
// subcommand runs a debug HTTP endpoint for ad-hoc inspection.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
