// Command acadrag answers questions about a user's uploaded study documents.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/cli"
)

// Set by the build with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}
