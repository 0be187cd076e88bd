// Package main provides the entry point for the storekb CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/storekb/cmd/storekb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
