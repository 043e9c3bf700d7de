package main

import (
	"os"

	"github.com/nikbrunner/sbm/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
