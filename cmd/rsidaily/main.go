package main

import (
	"os"

	"github.com/rustyeddy/rsidaily/cmd/rsidaily/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
