package main

import (
	"os"

	"github.com/bnema/addon-bridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
