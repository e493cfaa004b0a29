// Command pets-man generates man pages for the pets CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mesh-intelligence/pets/internal/cli"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "dist/man", "output directory for generated man pages")
	flag.Parse()

	if err := cli.GenerateManPages(outDir); err != nil {
		fmt.Fprintf(os.Stderr, "pets-man: %v\n", err)
		os.Exit(1)
	}
}
