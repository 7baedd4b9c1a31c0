package main

import (
	"os"

	"github.com/sadopc/breathe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
