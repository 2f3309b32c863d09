package main

import (
	"os"

	"github.com/lequangloc/benchexec/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
