// Package main is the entry point for the daylit-tray CLI.
package main

import (
	"os"

	"github.com/daylit-io/daylit-tray/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
