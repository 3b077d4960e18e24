// Package main provides the shardparse command.
package main

import (
	"os"

	"github.com/leapstack-labs/shardparse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
