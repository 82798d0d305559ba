package main

import (
	"os"

	"flashio/cmd/flashio/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
