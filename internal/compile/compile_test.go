// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/donor-match/internal/fixtures"
	"github.com/pdiddy/donor-match/internal/metrics"
	"github.com/pdiddy/donor-match/pkg/types"
)

func compileFixture(t *testing.T) (*Dictionary, Summary) {
	t.Helper()
	dict, summary, err := Compile(context.Background(), fixtures.Dataset(), Options{Workers: 4})
	require.NoError(t, err)
	return dict, summary
}

func TestCompileSummary(t *testing.T) {
	dict, summary := compileFixture(t)

	assert.Equal(t, fixtures.Version, dict.Version())
	assert.Equal(t, 21, summary.Serologies)
	assert.Equal(t, 14, summary.Alleles)
	assert.Equal(t, 21, summary.SerologyRecords)
	assert.Equal(t, dict.Len(), summary.SerologyRecords+summary.MolecularRecords)
	assert.Empty(t, summary.InvalidNames)

	var unresolved []string
	for _, u := range summary.Unresolved {
		unresolved = append(unresolved, u.Name)
	}
	assert.ElementsMatch(t, []string{"07:01", "07:01:01", "07:01:01:01"}, unresolved)
}

func TestCompileBroadSerology(t *testing.T) {
	dict, _ := compileFixture(t)

	info, ok := dict.Lookup(types.LocusB, "21", types.MethodSerology)
	require.True(t, ok)
	assert.Equal(t, types.SubtypeBroad, info.SerologySubtype)
	assert.Equal(t, []string{"21", "4005", "49", "50"}, types.MatchingSerologyNames(info.Serologies))

	for _, ms := range info.Serologies {
		assert.Equal(t, ms.Serology.Name == "21", ms.IsDirectMatch, ms.Serology.Name)
	}
}

func TestCompileSerologyGroupsComeFromMappedAlleles(t *testing.T) {
	dict, _ := compileFixture(t)

	info, ok := dict.Lookup(types.LocusA, "9", types.MethodSerology)
	require.True(t, ok)
	assert.Equal(t, []string{"23:01P", "24:02P", "24:03P"}, info.PGroups)
	assert.Equal(t, []string{"24:02:01G"}, info.GGroups)

	scoring, ok := dict.ScoringLookup(types.LocusA, "9", types.MethodSerology)
	require.True(t, ok)
	assert.Equal(t, types.KindSerology, scoring.Kind())
}

func TestCompileAlleleSerologies(t *testing.T) {
	dict, _ := compileFixture(t)

	info, ok := dict.Lookup(types.LocusA, "24:02:01:01", types.MethodMolecular)
	require.True(t, ok)
	assert.Equal(t, types.MolecularComplete, info.MolecularSubtype)
	assert.Equal(t, []string{"24", "2403", "9"}, types.MatchingSerologyNames(info.Serologies))
	assert.Equal(t, []string{"24:02P"}, info.PGroups)
}

func TestCompileMolecularEntries(t *testing.T) {
	dict, _ := compileFixture(t)

	tests := []struct {
		name        string
		wantSubtype types.MolecularSubtype
		wantKind    types.ScoringInfoKind
		wantAlleles []string
	}{
		{"01:01:01:01", types.MolecularComplete, types.KindSingleAllele, []string{"01:01:01:01"}},
		{"01:01", types.MolecularTwoField, types.KindMultipleAllele, []string{"01:01:01:01", "01:01:01:02N"}},
		{"01", types.MolecularFirstField, types.KindConsolidatedMolecular, []string{"01:01:01:01", "01:01:01:02N", "01:02"}},
		{"01:02", types.MolecularComplete, types.KindSingleAllele, []string{"01:02"}},
		{"01:01:01", types.MolecularComplete, types.KindSingleAllele, []string{"01:01:01:01"}},
		{"01:01:02", types.MolecularComplete, types.KindSingleAllele, []string{"01:01:01:01"}},
		{"99:01", types.MolecularComplete, types.KindSingleAllele, []string{"99:01"}},
		{"02:01L", types.MolecularComplete, types.KindSingleAllele, []string{"02:01:01:02L"}},
		{"02:01:01", types.MolecularTwoField, types.KindMultipleAllele, []string{"02:01:01:01", "02:01:01:02L"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := dict.Lookup(types.LocusA, tt.name, types.MethodMolecular)
			require.True(t, ok)
			assert.Equal(t, tt.wantSubtype, info.MolecularSubtype)
			assert.Equal(t, tt.wantAlleles, info.AlleleNames)

			scoring, ok := dict.ScoringLookup(types.LocusA, tt.name, types.MethodMolecular)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, scoring.Kind())
		})
	}
}

func TestCompileConsolidatedMolecular(t *testing.T) {
	dict, _ := compileFixture(t)

	scoring, ok := dict.ScoringLookup(types.LocusA, "01", types.MethodMolecular)
	require.True(t, ok)
	xx, ok := scoring.(types.ConsolidatedMolecularScoringInfo)
	require.True(t, ok)
	assert.Equal(t, []string{"01:01P", "01:02P"}, xx.PGroups)
	assert.Equal(t, []string{"1"}, types.MatchingSerologyNames(xx.Serologies))
}

func TestCompileSingleAlleleScoring(t *testing.T) {
	dict, _ := compileFixture(t)

	scoring, ok := dict.ScoringLookup(types.LocusA, "A*02:01:01:02L", types.MethodMolecular)
	require.True(t, ok, "WMDA locus prefix is accepted")
	single, ok := scoring.(types.SingleAlleleScoringInfo)
	require.True(t, ok)
	assert.Equal(t, "02:01P", single.PGroup)
	assert.Equal(t, "02:01:02G", single.GGroup)

	scoring, ok = dict.ScoringLookup(types.LocusA, "01:01N", types.MethodMolecular)
	require.True(t, ok)
	null, ok := scoring.(types.SingleAlleleScoringInfo)
	require.True(t, ok)
	assert.Empty(t, null.PGroup, "null expressers have no P-group")
}

func TestCompileDeletedAlleleHasNoOwnEntries(t *testing.T) {
	dict, _ := compileFixture(t)

	_, ok := dict.Lookup(types.LocusA, "05:01", types.MethodMolecular)
	assert.False(t, ok)
	_, ok = dict.Lookup(types.LocusA, "07:01:01:01", types.MethodMolecular)
	assert.False(t, ok)
	_, ok = dict.Lookup(types.LocusA, "99", types.MethodMolecular)
	assert.False(t, ok, "deleted alleles contribute no first-field name")
}

func TestCompileMethodsDoNotCollide(t *testing.T) {
	ds := fixtures.Dataset()
	ds.Alleles = append(ds.Alleles, types.AlleleRecord{Locus: types.LocusA, Name: "9"})

	dict, _, err := Compile(context.Background(), ds, Options{})
	require.NoError(t, err)

	_, ok := dict.Lookup(types.LocusA, "9", types.MethodSerology)
	assert.True(t, ok)
	_, ok = dict.Lookup(types.LocusA, "9", types.MethodMolecular)
	assert.True(t, ok)
}

func TestCompileIsDeterministicAcrossWorkerCounts(t *testing.T) {
	one, _, err := Compile(context.Background(), fixtures.Dataset(), Options{Workers: 1})
	require.NoError(t, err)
	many, _, err := Compile(context.Background(), fixtures.Dataset(), Options{Workers: 16})
	require.NoError(t, err)

	assert.Equal(t, one.Records(), many.Records())
}

func TestCompileDataConsistencyErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ds *types.Dataset)
	}{
		{
			name: "ambiguous serology parent",
			mutate: func(ds *types.Dataset) {
				ds.SerologyRelationships = append(ds.SerologyRelationships,
					types.SerologyRelationship{Locus: types.LocusA, Name: "19", SplitAntigens: []string{"23", "29"}})
			},
		},
		{
			name: "duplicate allele",
			mutate: func(ds *types.Dataset) {
				ds.Alleles = append(ds.Alleles, types.AlleleRecord{Locus: types.LocusA, Name: "01:02"})
			},
		},
		{
			name: "allele in two P-groups",
			mutate: func(ds *types.Dataset) {
				ds.PGroups = append(ds.PGroups, types.AlleleGroup{Locus: types.LocusA, Name: "01:99P", Alleles: []string{"01:02"}})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := fixtures.Dataset()
			tt.mutate(ds)

			dict, _, err := Compile(context.Background(), ds, Options{})
			assert.Nil(t, dict, "no partial dictionary on failure")
			var dce *types.DataConsistencyError
			assert.True(t, errors.As(err, &dce), "got %v", err)
		})
	}
}

func TestCompileReportsInvalidNames(t *testing.T) {
	ds := fixtures.Dataset()
	ds.Alleles = append(ds.Alleles, types.AlleleRecord{Locus: types.LocusB, Name: "08::01"})

	_, summary, err := Compile(context.Background(), ds, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, summary.InvalidNames)
}

func TestCompileRequiresVersion(t *testing.T) {
	ds := fixtures.Dataset()
	ds.Version = ""
	_, _, err := Compile(context.Background(), ds, Options{})
	assert.Error(t, err)
}

func TestCompileHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Compile(ctx, fixtures.Dataset(), Options{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileRecordsMetrics(t *testing.T) {
	m := metrics.New()
	_, _, err := Compile(context.Background(), fixtures.Dataset(), Options{Metrics: m})
	require.NoError(t, err)

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["donor_match_compilations_total"])
	assert.True(t, names["donor_match_unresolved_names_total"])
	assert.True(t, names["donor_match_lookup_records"])
}

func TestNewDictionaryRejectsDuplicateKeys(t *testing.T) {
	key := types.LookupKey{Locus: types.LocusA, Name: "1", Method: types.MethodSerology}
	_, err := NewDictionary("3400", []types.LookupRecord{{Key: key}, {Key: key}})
	var dce *types.DataConsistencyError
	assert.True(t, errors.As(err, &dce))
}
