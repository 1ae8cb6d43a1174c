// Package main implements the sports-car dashboard: an HTTP server over the
// car dataset plus a few operator commands.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ece *exitCodeError
		if errors.As(err, &ece) {
			if ece.err != nil {
				fmt.Fprintln(os.Stderr, ece.err)
			}
			os.Exit(ece.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitRuntime)
	}
}
