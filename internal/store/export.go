// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/donor-match/pkg/types"
)

// ExportEntry is one lookup record in an export file.
type ExportEntry struct {
	Locus       types.Locus        `json:"locus" yaml:"locus"`
	Name        string             `json:"name" yaml:"name"`
	Method      types.TypingMethod `json:"method" yaml:"method"`
	Matching    types.MatchingInfo `json:"matching" yaml:"matching"`
	ScoringKind string             `json:"scoring_kind,omitempty" yaml:"scoring_kind,omitempty"`
	Scoring     types.ScoringInfo  `json:"scoring,omitempty" yaml:"scoring,omitempty"`
}

// Export is the document written for one version.
type Export struct {
	Version string        `json:"version" yaml:"version"`
	Records []ExportEntry `json:"records" yaml:"records"`
}

// ExportYAML writes a stored version to <dir>/export/<version>.yaml and
// returns the path.
func (s *Store) ExportYAML(ctx context.Context, version string) (string, error) {
	doc, err := s.export(ctx, version)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport(version+".yaml", data)
}

// ExportJSON writes a stored version to <dir>/export/<version>.json and
// returns the path.
func (s *Store) ExportJSON(ctx context.Context, version string) (string, error) {
	doc, err := s.export(ctx, version)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport(version+".json", data)
}

func (s *Store) export(ctx context.Context, version string) (*Export, error) {
	dict, err := s.Load(ctx, version)
	if err != nil {
		return nil, err
	}

	records := dict.Records()
	doc := &Export{Version: version, Records: make([]ExportEntry, len(records))}
	for i, r := range records {
		doc.Records[i] = ExportEntry{
			Locus:    r.Key.Locus,
			Name:     r.Key.Name,
			Method:   r.Key.Method,
			Matching: r.Matching,
			Scoring:  r.Scoring,
		}
		if r.Scoring != nil {
			doc.Records[i].ScoringKind = string(r.Scoring.Kind())
		}
	}
	return doc, nil
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	dir := filepath.Join(s.dir, exportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
