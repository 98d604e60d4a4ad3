// Command progressionctl is the operator CLI for the CritiQuest progression engine.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
