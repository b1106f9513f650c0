package main

import (
	"os"

	"github.com/asherrising888-debug/NasdaqETF/cmd/etf/commands"
)

// main is the entry point for the ETF decision dashboard CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
