// Command hyperbee is the command-line interface for the HyperBee API.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/HyperbeeAI/hyperbee-go/cli/commands"
)

// ExitCoder is an interface for errors that have an exit code.
type ExitCoder interface {
	ExitCode() int
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		if ec, ok := err.(ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}
