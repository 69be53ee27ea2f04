package main

import (
	"os"

	"github.com/gridwise/microdispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
