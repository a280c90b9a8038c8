// Package main provides the leapsqlite CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapsqlite/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
