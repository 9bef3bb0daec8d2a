// Package main is the entry point for the hanzicam CLI.
package main

import (
	"os"

	"github.com/f3rmion/hanzicam/cmd/hanzicam/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
