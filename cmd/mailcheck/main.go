package main

import (
	"os"

	"github.com/idilsaglam/mailcheck/internal/cli"
)

func main() {
	// No subcommand starts the interactive checklist; see `mailcheck --help`.
	os.Exit(cli.Run(os.Args[1:]))
}
