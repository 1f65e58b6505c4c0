package main

import (
	"os"

	"keysync/cmd/keysync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
