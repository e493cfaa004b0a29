package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"
)

// GenerateManPages writes a section 1 man page per command into outDir.
func GenerateManPages(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create man output directory: %w", err)
	}

	root := NewRootCmd()
	root.DisableAutoGenTag = true
	header := &doc.GenManHeader{
		Title:   "PETS",
		Section: "1",
		Source:  "Pets " + Version,
		Manual:  "Pets Manual",
	}

	if err := doc.GenManTree(root, header, outDir); err != nil {
		return fmt.Errorf("generate man pages: %w", err)
	}
	return nil
}
