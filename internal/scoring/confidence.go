// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring classifies how well a donor typing matches a patient
// typing, one position pair at a time and per locus across both pairing
// orientations. Everything here is a pure function of compiled scoring
// info; no call blocks or touches shared state.
package scoring

import (
	"fmt"

	"github.com/pdiddy/donor-match/pkg/types"
)

// MatchConfidence is the classification of one position pair. Values are
// ordered: a larger value is a better match.
type MatchConfidence int

const (
	Mismatch MatchConfidence = iota
	Potential
	Exact
	Definite
)

var confidenceNames = map[MatchConfidence]string{
	Mismatch:  "mismatch",
	Potential: "potential",
	Exact:     "exact",
	Definite:  "definite",
}

func (c MatchConfidence) String() string {
	if s, ok := confidenceNames[c]; ok {
		return s
	}
	return fmt.Sprintf("confidence(%d)", int(c))
}

// Classify returns the match confidence of a patient and donor position.
// A nil side is untyped and can match anything. When either side is a
// serology, the matching-serology sets are compared; otherwise the P-groups
// are. The result does not depend on argument order.
func Classify(patient, donor types.ScoringInfo) (MatchConfidence, error) {
	if patient == nil || donor == nil {
		return Potential, nil
	}
	if isSerology(patient) || isSerology(donor) {
		if serologiesIntersect(patient, donor) {
			return Potential, nil
		}
		return Mismatch, nil
	}

	pp, dp, err := pGroupPair(patient, donor)
	if err != nil {
		return Mismatch, err
	}

	if len(pp) == 1 && len(dp) == 1 && pp[0] == dp[0] {
		if isSingleAllele(patient) && isSingleAllele(donor) {
			return Definite, nil
		}
		return Exact, nil
	}
	if types.IntersectStrings(pp, dp) {
		return Potential, nil
	}
	return Mismatch, nil
}

func isSerology(info types.ScoringInfo) bool {
	_, ok := info.(types.SerologyScoringInfo)
	return ok
}

func isSingleAllele(info types.ScoringInfo) bool {
	_, ok := info.(types.SingleAlleleScoringInfo)
	return ok
}

// PGroupsIntersect reports whether two molecular typings share a P-group.
// It fails with *types.InvalidComparisonError when either side is a
// serology, rather than reporting no intersection.
func PGroupsIntersect(patient, donor types.ScoringInfo) (bool, error) {
	pp, dp, err := pGroupPair(patient, donor)
	if err != nil {
		return false, err
	}
	return types.IntersectStrings(pp, dp), nil
}

// pGroupPair returns the P-groups of both sides. P-groups only exist for
// molecular typings, so a serology on either side is an
// *types.InvalidComparisonError.
func pGroupPair(patient, donor types.ScoringInfo) ([]string, []string, error) {
	if isSerology(patient) || isSerology(donor) {
		return nil, nil, &types.InvalidComparisonError{Patient: patient.Kind(), Donor: donor.Kind()}
	}
	pp, err := pGroups(patient)
	if err != nil {
		return nil, nil, err
	}
	dp, err := pGroups(donor)
	if err != nil {
		return nil, nil, err
	}
	return pp, dp, nil
}

func pGroups(info types.ScoringInfo) ([]string, error) {
	switch v := info.(type) {
	case types.SingleAlleleScoringInfo:
		return types.UnionStrings([]string{v.PGroup}), nil
	case types.MultipleAlleleScoringInfo:
		groups := make([]string, len(v.Alleles))
		for i, a := range v.Alleles {
			groups[i] = a.PGroup
		}
		return types.UnionStrings(groups), nil
	case types.ConsolidatedMolecularScoringInfo:
		return types.UnionStrings(v.PGroups), nil
	default:
		return nil, fmt.Errorf("unsupported scoring info %T", info)
	}
}

func gGroups(info types.ScoringInfo) []string {
	switch v := info.(type) {
	case types.SingleAlleleScoringInfo:
		return types.UnionStrings([]string{v.GGroup})
	case types.MultipleAlleleScoringInfo:
		groups := make([]string, len(v.Alleles))
		for i, a := range v.Alleles {
			groups[i] = a.GGroup
		}
		return types.UnionStrings(groups)
	case types.ConsolidatedMolecularScoringInfo:
		return types.UnionStrings(v.GGroups)
	}
	return nil
}

// alleleNames returns the explicit allele names of info. Consolidated and
// serology infos name no alleles.
func alleleNames(info types.ScoringInfo) []string {
	switch v := info.(type) {
	case types.SingleAlleleScoringInfo:
		return []string{v.AlleleName}
	case types.MultipleAlleleScoringInfo:
		names := make([]string, len(v.Alleles))
		for i, a := range v.Alleles {
			names[i] = a.AlleleName
		}
		return types.UnionStrings(names)
	}
	return nil
}

func serologiesIntersect(a, b types.ScoringInfo) bool {
	return types.IntersectStrings(
		types.MatchingSerologyNames(a.MatchingSerologies()),
		types.MatchingSerologyNames(b.MatchingSerologies()),
	)
}
