// Package main is the entry point for the gavchat CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/aiprlassist/gavchat/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
