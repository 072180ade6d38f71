//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/donor-match/internal/dataset"
	"github.com/pdiddy/donor-match/internal/fixtures"
)

// Sample writes the bundled reference dataset to datasets/.
func Sample() error {
	mg.Deps(Init)
	path, err := dataset.WriteFile("datasets", fixtures.Dataset())
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// Demo builds the CLI, compiles the sample dataset and scores one locus.
func Demo() error {
	mg.Deps(Build, Sample)
	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "compile", fixtures.Version, "--list-unresolved"); err != nil {
		return err
	}
	if err := sh.RunV(bin, "lookup", fixtures.Version, "B", "21", "--method", "serology"); err != nil {
		return err
	}
	return sh.RunV(bin, "score", fixtures.Version, "A", "01:01:01:01", "23:01:01:01", "23:01:01:01", "01:02")
}
