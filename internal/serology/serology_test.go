// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package serology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/donor-match/pkg/types"
)

func sampleRelationships() []types.SerologyRelationship {
	return []types.SerologyRelationship{
		{Locus: types.LocusA, Name: "2", AssociatedAntigens: []string{"203", "210"}},
		{Locus: types.LocusA, Name: "9", SplitAntigens: []string{"23", "24"}},
		{Locus: types.LocusA, Name: "24", AssociatedAntigens: []string{"2403"}},
		{Locus: types.LocusA, Name: "10", SplitAntigens: []string{"25", "26", "34", "66"}},
		{Locus: types.LocusB, Name: "21", SplitAntigens: []string{"49", "50"}, AssociatedAntigens: []string{"4005"}},
		{Locus: types.LocusB, Name: "14", SplitAntigens: []string{"64", "65"}},
	}
}

func sampleIndex() *Index {
	return NewIndex(sampleRelationships(), []types.SerologyRecord{
		{Locus: types.LocusA, Name: "34", IsDeleted: true},
	})
}

type match struct {
	name    string
	subtype types.SerologySubtype
	direct  bool
}

func flatten(set []types.MatchingSerology) []match {
	out := make([]match, len(set))
	for i, ms := range set {
		out[i] = match{ms.Serology.Name, ms.Serology.Subtype, ms.IsDirectMatch}
	}
	return out
}

func TestSubtype(t *testing.T) {
	idx := sampleIndex()
	tests := []struct {
		locus types.Locus
		name  string
		want  types.SerologySubtype
	}{
		{types.LocusA, "9", types.SubtypeBroad},
		{types.LocusA, "23", types.SubtypeSplit},
		{types.LocusA, "24", types.SubtypeSplit},
		{types.LocusA, "2403", types.SubtypeAssociated},
		{types.LocusA, "2", types.SubtypeNotSplit},
		{types.LocusA, "1", types.SubtypeNotSplit},
		{types.LocusB, "21", types.SubtypeBroad},
		{types.LocusB, "4005", types.SubtypeAssociated},
		{types.LocusB, "9", types.SubtypeNotSplit},
	}
	for _, tt := range tests {
		t.Run(string(tt.locus)+tt.name, func(t *testing.T) {
			typing, _, err := idx.Typing(tt.locus, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, typing.Subtype)
		})
	}
}

func TestMatchesBroadWithAssociated(t *testing.T) {
	_, set, err := sampleIndex().Matches(types.LocusB, "21")
	require.NoError(t, err)

	assert.Equal(t, []match{
		{"21", types.SubtypeBroad, true},
		{"4005", types.SubtypeAssociated, false},
		{"49", types.SubtypeSplit, false},
		{"50", types.SubtypeSplit, false},
	}, flatten(set))
}

func TestMatchesBroadIncludesAssociatedOfSplits(t *testing.T) {
	_, set, err := sampleIndex().Matches(types.LocusA, "9")
	require.NoError(t, err)

	assert.Equal(t, []match{
		{"23", types.SubtypeSplit, false},
		{"24", types.SubtypeSplit, false},
		{"2403", types.SubtypeAssociated, false},
		{"9", types.SubtypeBroad, true},
	}, flatten(set))
}

func TestBroadHasAtLeastTwoSplits(t *testing.T) {
	idx := sampleIndex()
	for _, rec := range sampleRelationships() {
		typing, fam, err := idx.Typing(rec.Locus, rec.Name)
		require.NoError(t, err)
		if typing.Subtype != types.SubtypeBroad {
			continue
		}
		prop, err := PropagatorFor(types.SubtypeBroad)
		require.NoError(t, err)
		indirect, err := prop.IndirectMatches(idx, fam)
		require.NoError(t, err)

		splits := 0
		for _, s := range indirect {
			if s.Subtype == types.SubtypeSplit {
				splits++
			}
		}
		assert.GreaterOrEqual(t, splits, 2, "broad %s", rec.Name)
	}
}

func TestMatchesSplit(t *testing.T) {
	_, set, err := sampleIndex().Matches(types.LocusA, "24")
	require.NoError(t, err)

	assert.Equal(t, []match{
		{"24", types.SubtypeSplit, true},
		{"2403", types.SubtypeAssociated, false},
		{"9", types.SubtypeBroad, false},
	}, flatten(set))
}

func TestMatchesNotSplit(t *testing.T) {
	idx := sampleIndex()

	_, set, err := idx.Matches(types.LocusA, "2")
	require.NoError(t, err)
	assert.Equal(t, []match{
		{"2", types.SubtypeNotSplit, true},
		{"203", types.SubtypeAssociated, false},
		{"210", types.SubtypeAssociated, false},
	}, flatten(set))

	_, set, err = idx.Matches(types.LocusA, "1")
	require.NoError(t, err)
	assert.Equal(t, []match{{"1", types.SubtypeNotSplit, true}}, flatten(set))
}

func TestAssociatedWithGrandparent(t *testing.T) {
	_, set, err := sampleIndex().Matches(types.LocusA, "2403")
	require.NoError(t, err)

	assert.Equal(t, []match{
		{"24", types.SubtypeSplit, false},
		{"2403", types.SubtypeAssociated, true},
		{"9", types.SubtypeBroad, false},
	}, flatten(set))
}

// Without a grandparent the parent's subtype is re-derived from its own
// family: broad for B21, not-split for A2. Exactly one indirect match.
func TestAssociatedWithoutGrandparent(t *testing.T) {
	idx := sampleIndex()
	prop, err := PropagatorFor(types.SubtypeAssociated)
	require.NoError(t, err)

	tests := []struct {
		locus       types.Locus
		name        string
		wantParent  string
		wantSubtype types.SerologySubtype
	}{
		{types.LocusB, "4005", "21", types.SubtypeBroad},
		{types.LocusA, "203", "2", types.SubtypeNotSplit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fam, err := idx.Family(tt.locus, tt.name)
			require.NoError(t, err)

			indirect, err := prop.IndirectMatches(idx, fam)
			require.NoError(t, err)
			require.Len(t, indirect, 1)
			assert.Equal(t, tt.wantParent, indirect[0].Name)
			assert.Equal(t, tt.wantSubtype, indirect[0].Subtype)
		})
	}
}

func TestDeletedFlagCarriedToMatches(t *testing.T) {
	_, set, err := sampleIndex().Matches(types.LocusA, "10")
	require.NoError(t, err)

	for _, ms := range set {
		assert.Equal(t, ms.Serology.Name == "34", ms.Serology.IsDeleted, ms.Serology.Name)
	}
}

func TestAmbiguousFamilyIsDataConsistencyError(t *testing.T) {
	records := append(sampleRelationships(),
		types.SerologyRelationship{Locus: types.LocusA, Name: "19", SplitAntigens: []string{"23", "29"}},
		types.SerologyRelationship{Locus: types.LocusA, Name: "9", SplitAntigens: []string{"23"}},
	)
	idx := NewIndex(records, nil)

	_, err := idx.Family(types.LocusA, "23")
	var dce *types.DataConsistencyError
	require.True(t, errors.As(err, &dce), "got %v", err)
	assert.Contains(t, dce.Reason, "parent")

	_, err = idx.Family(types.LocusA, "9")
	require.True(t, errors.As(err, &dce), "got %v", err)
	assert.Contains(t, dce.Reason, "child")
}

func TestPropagatorForUnknown(t *testing.T) {
	_, err := PropagatorFor(types.SubtypeUnknown)
	assert.Error(t, err)
}
