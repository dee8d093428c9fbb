package main

import (
	"os"

	"github.com/metapub/go-meta-api-wrapper/cmd/metapub/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
