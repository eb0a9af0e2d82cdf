// Command conveyor assembles kickstart files from reusable parts.
package main

import (
	"fmt"
	"os"

	"github.com/skosovsky/conveyor/internal/cli"
)

// Build information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	os.Exit(cli.Execute())
}
