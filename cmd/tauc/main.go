package main

import (
	"os"

	"tauc/cmd/tauc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
