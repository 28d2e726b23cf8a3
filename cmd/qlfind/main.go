package main

import (
	"os"

	"github.com/lvim-tech/qlfind/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
