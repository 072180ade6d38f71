// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// DataConsistencyError reports reference data that cannot be compiled
// unambiguously. It is fatal for the whole compilation run.
type DataConsistencyError struct {
	Locus  Locus
	Name   string
	Reason string
}

func (e *DataConsistencyError) Error() string {
	return fmt.Sprintf("data consistency: %s %s: %s", e.Locus, e.Name, e.Reason)
}

// UnresolvedNameError reports a lookup name that resolves to no known
// allele. The affected entry is omitted and compilation continues.
type UnresolvedNameError struct {
	Locus Locus
	Name  string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("unresolved name %s%s", e.Locus.MolecularName(), e.Name)
}

// InvalidComparisonError reports an attempt to compare P-groups of a
// serology scoring info.
type InvalidComparisonError struct {
	Patient ScoringInfoKind
	Donor   ScoringInfoKind
}

func (e *InvalidComparisonError) Error() string {
	return fmt.Sprintf("invalid comparison: cannot compare P-groups of %s and %s typings", e.Patient, e.Donor)
}
