// Package main provides the entry point for the newsdex CLI.
package main

import (
	"os"

	"github.com/newsdex/newsdex/cmd/newsdex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
