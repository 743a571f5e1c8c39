// Command aptsync ingests Seoul open-data housing datasets into a
// local store.
package main

import (
	"os"

	"github.com/hangang-labs/aptsync/internal/adapters/driving/cli"
)

// version is overridden at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
