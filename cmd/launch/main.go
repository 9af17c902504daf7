// Package main launches the stagelink runtime from a repository checkout,
// guiding the user to the build script when no runtime has been built yet.
package main

import (
	"fmt"
	"os"

	"github.com/stagelink-labs/stagelink/internal/launcher"
)

func main() {
	code, err := launcher.New().Run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}
