// Package main is the entry point for the handcalc CLI.
package main

import (
	"os"

	"github.com/ayusman/handcalc/cmd/handcalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
