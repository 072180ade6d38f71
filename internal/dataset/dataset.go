// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes reference datasets. A dataset is one
// YAML document per nomenclature version, served from a local directory or
// from an HTTP mirror laid out the same way.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/donor-match/pkg/types"
)

// ErrUnknownVersion is returned (wrapped) when no dataset exists for the
// requested version.
var ErrUnknownVersion = errors.New("unknown nomenclature version")

// FileName returns the file name holding version.
func FileName(version string) string {
	return version + ".yaml"
}

// Decode parses a dataset document and validates it against version. An
// empty version skips the version check.
func Decode(r io.Reader, version string) (*types.Dataset, error) {
	var ds types.Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	if err := Validate(&ds, version); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks the document-level properties compilation relies on:
// a version that matches the one requested and a supported locus on every
// record. Loci written in another accepted spelling ("DR", "Cw", "a") are
// rewritten to the canonical locus so lookups find them. Semantic
// consistency is the compiler's job.
func Validate(ds *types.Dataset, version string) error {
	if ds.Version == "" {
		return fmt.Errorf("dataset has no version")
	}
	if version != "" && ds.Version != version {
		return fmt.Errorf("dataset is version %s, want %s", ds.Version, version)
	}

	check := func(kind string, i int, l *types.Locus) error {
		canonical, err := types.ParseLocus(string(*l))
		if err != nil || *l == "" {
			return fmt.Errorf("%s record %d: unsupported locus %q", kind, i, *l)
		}
		*l = canonical
		return nil
	}
	for i := range ds.Serologies {
		if err := check("serology", i, &ds.Serologies[i].Locus); err != nil {
			return err
		}
	}
	for i := range ds.SerologyRelationships {
		if err := check("serology relationship", i, &ds.SerologyRelationships[i].Locus); err != nil {
			return err
		}
	}
	for i := range ds.AlleleSerologyRelationships {
		if err := check("allele serology relationship", i, &ds.AlleleSerologyRelationships[i].Locus); err != nil {
			return err
		}
	}
	for i := range ds.Alleles {
		if err := check("allele", i, &ds.Alleles[i].Locus); err != nil {
			return err
		}
	}
	for i := range ds.Histories {
		if err := check("history", i, &ds.Histories[i].Locus); err != nil {
			return err
		}
	}
	for i := range ds.PGroups {
		if err := check("P-group", i, &ds.PGroups[i].Locus); err != nil {
			return err
		}
	}
	for i := range ds.GGroups {
		if err := check("G-group", i, &ds.GGroups[i].Locus); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes ds to dir/<version>.yaml, creating dir as needed.
func WriteFile(dir string, ds *types.Dataset) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dataset directory: %w", err)
	}
	data, err := yaml.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("marshaling dataset: %w", err)
	}
	path := filepath.Join(dir, FileName(ds.Version))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing dataset: %w", err)
	}
	return path, nil
}
