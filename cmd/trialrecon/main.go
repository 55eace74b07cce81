// Package main provides the trialrecon CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/trialrecon/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
