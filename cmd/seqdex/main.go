// Package main provides the entry point for the seqdex CLI.
package main

import (
	"os"

	"github.com/seqdex/seqdex/cmd/seqdex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
