package main

import (
	"os"

	"github.com/ambelin/attune/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
