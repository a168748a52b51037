package main

import (
	"os"

	"github.com/fatim-sangare/frontend-test-nan/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
