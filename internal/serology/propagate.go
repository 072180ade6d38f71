// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package serology

import (
	"fmt"

	"github.com/pdiddy/donor-match/pkg/types"
)

// Propagator computes the indirect matches of a serology typing. The direct
// self-match is not included.
type Propagator interface {
	IndirectMatches(idx *Index, f Family) ([]types.SerologyTyping, error)
}

var propagators = map[types.SerologySubtype]Propagator{
	types.SubtypeNotSplit:   notSplitPropagator{},
	types.SubtypeSplit:      splitPropagator{},
	types.SubtypeBroad:      broadPropagator{},
	types.SubtypeAssociated: associatedPropagator{},
}

// PropagatorFor returns the propagator for subtype. Unknown has none.
func PropagatorFor(subtype types.SerologySubtype) (Propagator, error) {
	p, ok := propagators[subtype]
	if !ok {
		return nil, fmt.Errorf("no match propagator for serology subtype %q", subtype)
	}
	return p, nil
}

type notSplitPropagator struct{}

func (notSplitPropagator) IndirectMatches(idx *Index, f Family) ([]types.SerologyTyping, error) {
	return idx.associatedChildren(f), nil
}

type splitPropagator struct{}

func (splitPropagator) IndirectMatches(idx *Index, f Family) ([]types.SerologyTyping, error) {
	if !f.HasParent() {
		return nil, &types.DataConsistencyError{Locus: f.Locus, Name: f.Name, Reason: "split antigen without a broad parent"}
	}
	broad := idx.records[f.Parent]
	matches := []types.SerologyTyping{idx.typing(broad.Locus, broad.Name, types.SubtypeBroad)}
	return append(matches, idx.associatedChildren(f)...), nil
}

type broadPropagator struct{}

func (broadPropagator) IndirectMatches(idx *Index, f Family) ([]types.SerologyTyping, error) {
	if !f.HasChild() {
		return nil, &types.DataConsistencyError{Locus: f.Locus, Name: f.Name, Reason: "broad antigen without split antigens"}
	}

	var matches []types.SerologyTyping
	for _, split := range idx.records[f.Child].SplitAntigens {
		matches = append(matches, idx.typing(f.Locus, split, types.SubtypeSplit))

		splitFamily, err := idx.Family(f.Locus, split)
		if err != nil {
			return nil, err
		}
		matches = append(matches, idx.associatedChildren(splitFamily)...)
	}
	return append(matches, idx.associatedChildren(f)...), nil
}

type associatedPropagator struct{}

// IndirectMatches emits the parent and, when one exists, the grandparent.
// Without a grandparent the parent may be broad or not-split, so its subtype
// is re-derived from its own family.
func (associatedPropagator) IndirectMatches(idx *Index, f Family) ([]types.SerologyTyping, error) {
	if !f.HasParent() {
		return nil, &types.DataConsistencyError{Locus: f.Locus, Name: f.Name, Reason: "associated antigen without a parent"}
	}
	parent := idx.records[f.Parent]

	parentFamily, err := idx.Family(parent.Locus, parent.Name)
	if err != nil {
		return nil, err
	}

	if !parentFamily.HasParent() {
		return []types.SerologyTyping{
			idx.typing(parent.Locus, parent.Name, idx.Subtype(parentFamily)),
		}, nil
	}

	grandparent := idx.records[parentFamily.Parent]
	return []types.SerologyTyping{
		idx.typing(parent.Locus, parent.Name, types.SubtypeSplit),
		idx.typing(grandparent.Locus, grandparent.Name, types.SubtypeBroad),
	}, nil
}

func (idx *Index) associatedChildren(f Family) []types.SerologyTyping {
	if !f.HasChild() {
		return nil
	}
	rec := idx.records[f.Child]
	out := make([]types.SerologyTyping, 0, len(rec.AssociatedAntigens))
	for _, name := range rec.AssociatedAntigens {
		out = append(out, idx.typing(rec.Locus, name, types.SubtypeAssociated))
	}
	return out
}
