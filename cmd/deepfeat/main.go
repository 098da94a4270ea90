// Package main is the entry point for the deepfeat binary.
package main

import (
	"os"

	"github.com/avollmer/deepfeat/cli"
)

func main() {
	os.Exit(cli.Execute())
}
