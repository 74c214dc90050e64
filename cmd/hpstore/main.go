// Command hpstore reads and writes the heat pump equipment configuration and
// time-series records used by the operation solver.
package main

import (
	"os"

	"github.com/roach88/hpstore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
