package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/docvault-labs/docvault/internal/adapters/driving/cli"
)

func main() {
	// A .env file is optional; real deployments set variables directly.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
