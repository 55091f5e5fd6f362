package main

import (
	"os"

	"github.com/printforge/fleet/cmd/fleetctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
