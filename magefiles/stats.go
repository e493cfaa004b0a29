package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Stats prints production and test Go line counts per top-level directory
// as one JSON object.
func Stats() error {
	counts := map[string]int{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		kind := "prod"
		if strings.HasSuffix(path, "_test.go") {
			kind = "test"
		}
		top, _, _ := strings.Cut(filepath.ToSlash(path), "/")
		counts[top+"_"+kind] += bytes.Count(data, []byte("\n"))
		counts["total_"+kind] += bytes.Count(data, []byte("\n"))
		return nil
	})
	if err != nil {
		return err
	}

	line, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// skipDir reports directories the go tool ignores plus build output and
// the mage targets themselves.
func skipDir(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") ||
		name == "vendor" || name == "testdata" || name == binaryDir || name == "magefiles"
}
