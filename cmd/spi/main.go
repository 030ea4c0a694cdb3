package main

import (
	"os"

	"github.com/msto63/spi/cmd/spi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
