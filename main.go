package main

import (
	"os"

	"github.com/carson-networks/banking-core/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
