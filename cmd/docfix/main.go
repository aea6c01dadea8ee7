package main

import (
	"os"

	"github.com/Fepozopo/docfix/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
