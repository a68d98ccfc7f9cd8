package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Main runs a command body and exits through Exitf when it fails. The body
// returns before the process exits, so its deferred cleanup always runs.
func Main(name string, run func() error) {
	if err := run(); err != nil {
		Exitf("%s: %v", name, err)
	}
}
