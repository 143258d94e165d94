package main

import (
	"os"

	"stocksim/cmd/stockctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
