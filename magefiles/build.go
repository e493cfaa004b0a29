// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// versionFlags stamps the CLI version from the latest git tag, if any.
func versionFlags() string {
	tag, err := sh.Output("git", "describe", "--tags", "--abbrev=0")
	if err != nil || tag == "" {
		return ""
	}
	return "-X " + modulePath + "/internal/cli.Version=" + strings.TrimPrefix(tag, "v")
}

// Build compiles the pets binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if ldflags := versionFlags(); ldflags != "" {
		args = append(args, "-ldflags", ldflags)
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// Man generates section 1 man pages for every command.
func Man() error {
	return sh.RunV(binGo, "run", manCmdDir, "-out", manDir)
}

// Clean removes build artifacts.
func Clean() error {
	for _, dir := range []string{binaryDir, "dist"} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
