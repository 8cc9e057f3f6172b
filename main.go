package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/briankw/theo/cmd"
)

func main() {
	// Optional .env next to the binary; real env always wins.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
