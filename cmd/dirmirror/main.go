package main

import (
	"os"

	"github.com/bianoble/dirmirror/cmd/dirmirror/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
