// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"fmt"

	"github.com/pdiddy/donor-match/pkg/types"
)

// MatchGrade names the finest level at which a position pair matches.
// Values are ordered from worst to best; GradeUnknown sits outside the order
// and is only produced for an untyped side.
type MatchGrade int

const (
	GradeUnknown MatchGrade = iota
	GradeMismatch
	GradeBroad
	GradeSplit
	GradeAssociated
	GradeSerology
	GradePGroup
	GradeGGroup
	GradeAllele
)

var gradeNames = map[MatchGrade]string{
	GradeUnknown:    "unknown",
	GradeMismatch:   "mismatch",
	GradeBroad:      "broad",
	GradeSplit:      "split",
	GradeAssociated: "associated",
	GradeSerology:   "serology",
	GradePGroup:     "p-group",
	GradeGGroup:     "g-group",
	GradeAllele:     "allele",
}

func (g MatchGrade) String() string {
	if s, ok := gradeNames[g]; ok {
		return s
	}
	return fmt.Sprintf("grade(%d)", int(g))
}

// Grade returns the match grade of a patient and donor position. Molecular
// pairs grade on shared allele names, then G-groups, then P-groups, and fall
// back to serology when none are shared. Pairs involving a serology grade on
// their matching-serology sets only. Two sides with no P-group at all (null
// expressers) are a mismatch, as Classify reports.
func Grade(patient, donor types.ScoringInfo) (MatchGrade, error) {
	if patient == nil || donor == nil {
		return GradeUnknown, nil
	}
	if isSerology(patient) || isSerology(donor) {
		return serologyGrade(patient, donor), nil
	}

	pp, dp, err := pGroupPair(patient, donor)
	if err != nil {
		return GradeMismatch, err
	}
	if len(pp) == 0 && len(dp) == 0 {
		return GradeMismatch, nil
	}
	if types.IntersectStrings(alleleNames(patient), alleleNames(donor)) {
		return GradeAllele, nil
	}
	if types.IntersectStrings(gGroups(patient), gGroups(donor)) {
		return GradeGGroup, nil
	}
	if types.IntersectStrings(pp, dp) {
		return GradePGroup, nil
	}
	return serologyGrade(patient, donor), nil
}

// serologyGrade compares matching-serology sets. Sharing a directly matched
// serology is a serology match. Otherwise a shared indirect serology grades
// by the subtypes of the two sides' own serologies: any broad makes it a
// broad match, any split a split match, and associated antigens are left.
func serologyGrade(patient, donor types.ScoringInfo) MatchGrade {
	ps, ds := patient.MatchingSerologies(), donor.MatchingSerologies()

	pDirect, dDirect := directNames(ps), directNames(ds)
	if types.IntersectStrings(pDirect, dDirect) {
		return GradeSerology
	}
	if !types.IntersectStrings(types.MatchingSerologyNames(ps), types.MatchingSerologyNames(ds)) {
		return GradeMismatch
	}

	subtypes := make(map[types.SerologySubtype]bool)
	for _, set := range [][]types.MatchingSerology{ps, ds} {
		for _, ms := range set {
			if ms.IsDirectMatch {
				subtypes[ms.Serology.Subtype] = true
			}
		}
	}
	switch {
	case subtypes[types.SubtypeBroad]:
		return GradeBroad
	case subtypes[types.SubtypeSplit]:
		return GradeSplit
	}
	return GradeAssociated
}

func directNames(set []types.MatchingSerology) []string {
	var names []string
	for _, ms := range set {
		if ms.IsDirectMatch {
			names = append(names, ms.Serology.Name)
		}
	}
	return names
}
