package main

import (
	"os"

	"github.com/relayops/modbalance/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
