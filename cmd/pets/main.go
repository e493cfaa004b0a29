// Command pets manages a local catalog of pets.
package main

import (
	"github.com/joho/godotenv"

	"github.com/mesh-intelligence/pets/internal/cli"
)

func main() {
	// A missing .env is fine; variables already set win.
	_ = godotenv.Load()
	cli.Execute()
}
