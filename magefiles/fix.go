package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test runs the unit tests. The sqlite3 driver needs cgo.
func Test() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "./...")
}

// DryRun builds the CLI and reports which blocks of the configured page
// would change. Set NOTION_PAGE to target a different page.
func DryRun() error {
	mg.Deps(Build)
	return runCLI("fix", "--dry-run")
}

// Fix builds the CLI and rewrites inline math on the configured page.
// Set NOTION_PAGE to target a different page.
func Fix() error {
	mg.Deps(Build)
	return runCLI("fix")
}

// History lists the journaled runs.
func History() error {
	mg.Deps(Build)
	return runCLI("history")
}

func runCLI(args ...string) error {
	if page := os.Getenv("NOTION_PAGE"); page != "" && args[0] == "fix" {
		args = append(args, page)
	}
	return sh.RunV(filepath.Join(binDir, binName), args...)
}
