// Package main is the relayui command.
package main

import (
	"os"

	"github.com/leapstack-labs/relayui/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
