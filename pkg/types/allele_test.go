// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlleleTyping(t *testing.T) {
	a, err := NewAlleleTyping(LocusA, "02:01:01:02L", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"02", "01", "01", "02"}, a.Fields)
	assert.Equal(t, "L", a.ExpressionSuffix)
	assert.False(t, a.IsNullExpresser)
	assert.Equal(t, "02", a.FirstField)
	assert.Equal(t, "02:01L", a.TwoFieldNameWithSuffix)
	assert.Equal(t, "02:01", a.TwoFieldNameWithoutSuffix)
	assert.Contains(t, a.NameVariants, "02:01")
	assert.NotContains(t, a.NameVariants, "02:01:01:02L")
	assert.Equal(t, "A*02:01:01:02L", a.WMDAName())
}

func TestNewAlleleTypingNullExpresser(t *testing.T) {
	a, err := NewAlleleTyping(LocusDrb1, "01:01:01:02N", false)
	require.NoError(t, err)
	assert.True(t, a.IsNullExpresser)
	assert.Equal(t, "01:01N", a.TwoFieldNameWithSuffix)
}

func TestNewAlleleTypingWithoutSuffix(t *testing.T) {
	a, err := NewAlleleTyping(LocusB, "08:01", false)
	require.NoError(t, err)

	assert.Empty(t, a.ExpressionSuffix)
	assert.Equal(t, "08:01", a.TwoFieldNameWithoutSuffix)
	assert.Empty(t, a.NameVariants, "a two-field name without suffix has no other truncation")
}

func TestNewAlleleTypingInvalid(t *testing.T) {
	for _, name := range []string{"", "  ", "N", "01::01", ":01"} {
		_, err := NewAlleleTyping(LocusA, name, false)
		assert.Error(t, err, "name %q", name)
	}
}

func TestTruncate(t *testing.T) {
	a := MustAlleleTyping(LocusA, "01:01:01:02N")

	tests := []struct {
		n          int
		withSuffix bool
		want       string
	}{
		{1, false, "01"},
		{2, false, "01:01"},
		{2, true, "01:01N"},
		{3, false, "01:01:01"},
		{4, true, "01:01:01:02N"},
	}
	for _, tt := range tests {
		got, err := a.Truncate(tt.n, tt.withSuffix)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := a.Truncate(5, false)
	assert.Error(t, err)
	_, err = a.Truncate(0, false)
	assert.Error(t, err)
}

func TestTruncateNeverReproducesFullName(t *testing.T) {
	for _, name := range []string{"01:01:01:01", "02:01:01:02L", "03:01:01", "24:02:01:02L", "08:01N"} {
		a := MustAlleleTyping(LocusA, name)
		for n := 1; n < len(a.Fields); n++ {
			for _, withSuffix := range []bool{false, true} {
				got, err := a.Truncate(n, withSuffix)
				require.NoError(t, err)
				assert.NotEqual(t, name, got)
				for _, f := range strings.Split(strings.TrimRight(got, expressionLetters), ":") {
					assert.NotEmpty(t, f, "truncation %q of %q", got, name)
				}
			}
		}
	}
}

func TestParseLocus(t *testing.T) {
	tests := map[string]Locus{
		"A":     LocusA,
		"a*":    LocusA,
		"Cw":    LocusC,
		"DRB1*": LocusDrb1,
		"DR":    LocusDrb1,
		"dqb1":  LocusDqb1,
	}
	for in, want := range tests {
		got, err := ParseLocus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLocus("E")
	assert.Error(t, err)
}

func TestScoringInfoRoundTripKeepsVariant(t *testing.T) {
	infos := []ScoringInfo{
		SerologyScoringInfo{Serologies: []MatchingSerology{{Serology: NewSerologyTyping(LocusA, "9", SubtypeBroad, false), IsDirectMatch: true}}},
		SingleAlleleScoringInfo{AlleleName: "01:01:01:01", PGroup: "01:01P", GGroup: "01:01:01G"},
		MultipleAlleleScoringInfo{Alleles: []SingleAlleleScoringInfo{{AlleleName: "01:01:01:01"}, {AlleleName: "01:02"}}},
		ConsolidatedMolecularScoringInfo{PGroups: []string{"01:01P", "01:02P"}},
	}
	for _, info := range infos {
		data, err := MarshalScoringInfo(info)
		require.NoError(t, err)
		got, err := UnmarshalScoringInfo(data)
		require.NoError(t, err)
		assert.Equal(t, info, got)
	}

	_, err := UnmarshalScoringInfo([]byte(`{"kind":"bogus"}`))
	assert.Error(t, err)
	_, err = UnmarshalScoringInfo([]byte(`{"kind":"serology"}`))
	assert.Error(t, err)
}

func TestUnionSerologiesKeepsDirect(t *testing.T) {
	s9 := NewSerologyTyping(LocusA, "9", SubtypeBroad, false)
	s23 := NewSerologyTyping(LocusA, "23", SubtypeSplit, false)

	got := UnionSerologies(
		[]MatchingSerology{{Serology: s9}, {Serology: s23, IsDirectMatch: true}},
		[]MatchingSerology{{Serology: s9, IsDirectMatch: true}, {Serology: s23}},
	)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsDirectMatch)
	assert.True(t, got[1].IsDirectMatch)
	assert.Equal(t, []string{"23", "9"}, MatchingSerologyNames(got))
}
