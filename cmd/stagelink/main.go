// Package main is the entry point for the stagelink CLI.
package main

import (
	"os"

	"github.com/stagelink-labs/stagelink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
