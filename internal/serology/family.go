// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package serology resolves serology families from relationship records and
// expands each serology typing into its matching-equivalence set.
//
// Records are held in an arena and addressed by index; the name indexes map
// (locus, name) to arena positions, so the family graph has no pointers.
package serology

import (
	"fmt"
	"slices"

	"github.com/pdiddy/donor-match/pkg/types"
)

type nameKey struct {
	locus types.Locus
	name  string
}

// Index is the precomputed relationship graph for one nomenclature version.
// It is immutable after NewIndex and safe for concurrent use.
type Index struct {
	records  []types.SerologyRelationship
	children map[nameKey][]int
	parents  map[nameKey][]int
	deleted  map[nameKey]bool
}

// NewIndex builds the name indexes over records. serologies supplies the
// deletion flag for typings the propagators emit.
func NewIndex(records []types.SerologyRelationship, serologies []types.SerologyRecord) *Index {
	idx := &Index{
		records:  slices.Clone(records),
		children: make(map[nameKey][]int),
		parents:  make(map[nameKey][]int),
		deleted:  make(map[nameKey]bool),
	}

	for i, r := range idx.records {
		k := nameKey{r.Locus, r.Name}
		idx.children[k] = append(idx.children[k], i)

		listed := make(map[string]bool)
		for _, name := range append(slices.Clone(r.SplitAntigens), r.AssociatedAntigens...) {
			if listed[name] {
				continue
			}
			listed[name] = true
			pk := nameKey{r.Locus, name}
			idx.parents[pk] = append(idx.parents[pk], i)
		}
	}

	for _, s := range serologies {
		if s.IsDeleted {
			idx.deleted[nameKey{s.Locus, s.Name}] = true
		}
	}
	return idx
}

// Record returns the relationship record at arena position i.
func (idx *Index) Record(i int) types.SerologyRelationship {
	return idx.records[i]
}

// Family is a serology typing's place in the relationship graph: the record
// that lists it as a split or associated antigen, and the record it heads.
// Absent records have index -1.
type Family struct {
	Locus  types.Locus
	Name   string
	Parent int
	Child  int
}

// HasParent reports whether the typing is listed by another record.
func (f Family) HasParent() bool { return f.Parent >= 0 }

// HasChild reports whether the typing heads its own record.
func (f Family) HasChild() bool { return f.Child >= 0 }

// Family resolves the family of (locus, name). More than one candidate
// parent or child record is a *types.DataConsistencyError.
func (idx *Index) Family(locus types.Locus, name string) (Family, error) {
	k := nameKey{locus, name}
	f := Family{Locus: locus, Name: name, Parent: -1, Child: -1}

	switch parents := idx.parents[k]; len(parents) {
	case 0:
	case 1:
		f.Parent = parents[0]
	default:
		return Family{}, &types.DataConsistencyError{
			Locus:  locus,
			Name:   name,
			Reason: fmt.Sprintf("%d candidate parent records", len(parents)),
		}
	}

	switch children := idx.children[k]; len(children) {
	case 0:
	case 1:
		f.Child = children[0]
	default:
		return Family{}, &types.DataConsistencyError{
			Locus:  locus,
			Name:   name,
			Reason: fmt.Sprintf("%d candidate child records", len(children)),
		}
	}

	return f, nil
}

// Subtype classifies the typing from its family.
func (idx *Index) Subtype(f Family) types.SerologySubtype {
	if f.HasParent() {
		parent := idx.records[f.Parent]
		if slices.Contains(parent.SplitAntigens, f.Name) {
			return types.SubtypeSplit
		}
		if slices.Contains(parent.AssociatedAntigens, f.Name) {
			return types.SubtypeAssociated
		}
	}
	if f.HasChild() && len(idx.records[f.Child].SplitAntigens) > 0 {
		return types.SubtypeBroad
	}
	return types.SubtypeNotSplit
}

// Typing returns the serology typing for (locus, name) with its resolved
// subtype.
func (idx *Index) Typing(locus types.Locus, name string) (types.SerologyTyping, Family, error) {
	f, err := idx.Family(locus, name)
	if err != nil {
		return types.SerologyTyping{}, Family{}, err
	}
	return idx.typing(locus, name, idx.Subtype(f)), f, nil
}

func (idx *Index) typing(locus types.Locus, name string, subtype types.SerologySubtype) types.SerologyTyping {
	return types.NewSerologyTyping(locus, name, subtype, idx.deleted[nameKey{locus, name}])
}

// Matches returns the matching-serology set of (locus, name): the typing
// itself as a direct match plus its indirect matches from the propagator
// selected by its subtype.
func (idx *Index) Matches(locus types.Locus, name string) (types.SerologyTyping, []types.MatchingSerology, error) {
	typing, fam, err := idx.Typing(locus, name)
	if err != nil {
		return types.SerologyTyping{}, nil, err
	}

	prop, err := PropagatorFor(typing.Subtype)
	if err != nil {
		return types.SerologyTyping{}, nil, err
	}

	indirect, err := prop.IndirectMatches(idx, fam)
	if err != nil {
		return types.SerologyTyping{}, nil, err
	}

	set := []types.MatchingSerology{{Serology: typing, IsDirectMatch: true}}
	for _, s := range indirect {
		set = append(set, types.MatchingSerology{Serology: s})
	}
	return typing, types.UnionSerologies(set), nil
}
