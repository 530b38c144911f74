package main

import (
	"os"

	"github.com/ridegrid/ridegrid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
