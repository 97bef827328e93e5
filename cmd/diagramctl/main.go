package main

import (
	"os"

	"github.com/inkboard/diagram/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
