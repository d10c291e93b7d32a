package main

import (
	"os"

	"github.com/bindulearn/bindu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
