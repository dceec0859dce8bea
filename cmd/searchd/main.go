package main

import (
	"os"

	"github.com/searchbox/linesearchd/cmd/searchd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
