// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/donor-match/internal/compile"
	"github.com/pdiddy/donor-match/internal/dataset"
	"github.com/pdiddy/donor-match/internal/fixtures"
	"github.com/pdiddy/donor-match/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(types.StoreConfig{Dir: dir}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func compiled(t *testing.T, version string) *compile.Dictionary {
	t.Helper()
	ds := fixtures.Dataset()
	ds.Version = version
	dict, _, err := compile.Compile(context.Background(), ds, compile.Options{Workers: 2})
	require.NoError(t, err)
	return dict
}

func TestNewStoreCreatesSchema(t *testing.T) {
	s, dir := testStore(t)

	_, err := os.Stat(filepath.Join(dir, indexDir, dbFile))
	require.NoError(t, err)

	for _, table := range []string{"versions", "matching_lookups", "scoring_lookups"} {
		var n int
		err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	dict := compiled(t, fixtures.Version)

	require.NoError(t, s.Save(ctx, dict))

	loaded, err := s.Load(ctx, fixtures.Version)
	require.NoError(t, err)
	assert.Equal(t, dict.Version(), loaded.Version())
	assert.Equal(t, dict.Records(), loaded.Records())

	info, ok := loaded.ScoringLookup(types.LocusA, "01", types.MethodMolecular)
	require.True(t, ok)
	assert.Equal(t, types.KindConsolidatedMolecular, info.Kind())
}

func TestSaveReplacesVersion(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, compiled(t, fixtures.Version)))

	smaller, err := compile.NewDictionary(fixtures.Version, []types.LookupRecord{{
		Key:     types.LookupKey{Locus: types.LocusB, Name: "8", Method: types.MethodSerology},
		Scoring: types.SerologyScoringInfo{},
	}})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, smaller))

	loaded, err := s.Load(ctx, fixtures.Version)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())

	var orphans int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM scoring_lookups`).Scan(&orphans))
	assert.Equal(t, 1, orphans)
}

func TestLoadMissingVersion(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.Load(context.Background(), "3999")
	assert.ErrorIs(t, err, compile.ErrNotFound)
}

func TestVersionsAndDelete(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, compiled(t, "3410")))
	require.NoError(t, s.Save(ctx, compiled(t, "3400")))

	versions, err := s.Versions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "3400", versions[0].Version)
	assert.Equal(t, "3410", versions[1].Version)
	assert.Positive(t, versions[0].Records)
	assert.False(t, versions[0].CompiledAt.IsZero())

	require.NoError(t, s.Delete(ctx, "3400"))
	_, err = s.Load(ctx, "3400")
	assert.ErrorIs(t, err, compile.ErrNotFound)

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM matching_lookups WHERE version = '3400'`).Scan(&rows))
	assert.Zero(t, rows, "records are removed with their version")
}

func TestExportYAML(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()
	dict := compiled(t, fixtures.Version)
	require.NoError(t, s.Save(ctx, dict))

	path, err := s.ExportYAML(ctx, fixtures.Version)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, exportDir, "3400.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Version string `yaml:"version"`
		Records []struct {
			Name        string `yaml:"name"`
			ScoringKind string `yaml:"scoring_kind"`
		} `yaml:"records"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, fixtures.Version, doc.Version)
	assert.Len(t, doc.Records, dict.Len())
	for _, r := range doc.Records {
		assert.NotEmpty(t, r.ScoringKind, r.Name)
	}
}

func TestExportJSON(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()
	dict := compiled(t, fixtures.Version)
	require.NoError(t, s.Save(ctx, dict))

	path, err := s.ExportJSON(ctx, fixtures.Version)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, exportDir, "3400.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Version string            `json:"version"`
		Records []json.RawMessage `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Records, dict.Len())
}

func TestExportMissingVersion(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.ExportJSON(context.Background(), "3999")
	assert.ErrorIs(t, err, compile.ErrNotFound)
}

func TestStoreBacksManager(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	dataDir := t.TempDir()
	_, err := dataset.WriteFile(dataDir, fixtures.Dataset())
	require.NoError(t, err)

	first := compile.NewManager(dataset.DirSource{Dir: dataDir}, s, compile.Options{})
	built, err := first.Dictionary(ctx, fixtures.Version)
	require.NoError(t, err)

	// A second manager with no dataset available is served from the store.
	second := compile.NewManager(dataset.DirSource{Dir: t.TempDir()}, s, compile.Options{})
	loaded, err := second.Dictionary(ctx, fixtures.Version)
	require.NoError(t, err)
	assert.Equal(t, built.Records(), loaded.Records())
}
