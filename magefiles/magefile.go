// Package main provides build targets for the pets project using Mage.
//
// Usage:
//
//	mage build          Compile the pets binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests without the race detector
//	mage test:race      Run all tests with -race
//	mage test:cover     Write a coverage profile to bin/coverage.out
//	mage lint           Run golangci-lint
//	mage man            Generate man pages into dist/man
//	mage clean          Remove build artifacts
//	mage install        Install pets to GOPATH/bin
//	mage stats          Print Go line counts per top-level directory
package main

const (
	binGo      = "go"
	binaryName = "pets"
	binaryDir  = "bin"
	cmdDir     = "./cmd/pets"
	manCmdDir  = "./cmd/pets-man"
	manDir     = "dist/man"
	modulePath = "github.com/mesh-intelligence/pets"
)
