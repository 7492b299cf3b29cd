// main.go
//
// Entry point for the stardust binary. Subcommands live in ./cmd:
//   - serve: HTTP game service (chi + SQLite)
//   - play:  terminal client (tcell)
//   - sim:   headless autoplay
package main

import (
	"os"

	"github.com/robalobadob/stardust-blast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
