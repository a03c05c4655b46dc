package main

import (
	"os"

	"github.com/ethanwoods/stockrank/cmd/stockrank/commands"
)

// main is the entry point for the stockrank CLI: go run ./cmd/stockrank [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
