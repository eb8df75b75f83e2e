package main

import (
	"os"

	"github.com/PatelShiv10/sgp-7-sem-sub001/cmd/lawmate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
