// adsaver generates ad keyword combinations from up to three term columns.
// Single binary: CLI, local daemon, and a browser UI.
package main

import (
	"os"

	"github.com/corey/adsaver/cmd/adsaver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
