package main

import (
	"os"

	"github.com/nemointern/darkpool-svc/internal/cli"
)

func main() {
	if !cli.Run(os.Args) {
		os.Exit(1)
	}
}
