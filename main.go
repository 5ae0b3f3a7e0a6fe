package main

import (
	"os"

	"CafePOS/Commands"
)

func main() {
	if err := Commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
