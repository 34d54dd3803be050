package main

import (
	"os"

	"github.com/rustyeddy/execution/cmd/execd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
