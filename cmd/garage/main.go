// Command garage is the command-line front end for the garage REST API and
// its development server.
package main

import (
	"os"

	"github.com/braude/garage/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
