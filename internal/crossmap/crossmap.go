// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crossmap links allele typings to their serology equivalents and
// serology typings to the alleles that express them.
package crossmap

import (
	"github.com/pdiddy/donor-match/pkg/types"
)

// Mapper holds the allele-to-serology assignments of one version and the
// compiled serology expansions they are intersected with. It must be built
// after serology expansion has finished; it is read-only afterwards.
type Mapper struct {
	assigned   map[string][]string
	assignedTo map[string][]string
	expansions map[string][]types.MatchingSerology
}

// NewMapper indexes relationships by WMDA allele name and expansions by
// WMDA serology name.
func NewMapper(relationships []types.AlleleSerologyRelationship, expansions []types.MatchedTyping) *Mapper {
	m := &Mapper{
		assigned:   make(map[string][]string, len(relationships)),
		assignedTo: make(map[string][]string),
		expansions: make(map[string][]types.MatchingSerology, len(expansions)),
	}

	for _, e := range expansions {
		m.expansions[e.Source.WMDAName()] = e.Serologies
	}

	for _, rel := range relationships {
		allele := types.Typing{Locus: rel.Locus, Name: rel.AlleleName, Method: types.MethodMolecular}
		key := allele.WMDAName()
		m.assigned[key] = types.UnionStrings(m.assigned[key], rel.Serologies)

		for _, s := range rel.Serologies {
			sk := serologyKey(rel.Locus, s)
			m.assignedTo[sk] = types.UnionStrings(m.assignedTo[sk], []string{rel.AlleleName})
		}
	}
	return m
}

func serologyKey(locus types.Locus, name string) string {
	return types.Typing{Locus: locus, Name: name, Method: types.MethodSerology}.WMDAName()
}

// SerologiesForAllele returns the union of the matching-serology sets of the
// serologies assigned to a. Assigned names with no compiled expansion are
// ignored. An allele without an assignment record has no equivalents.
func (m *Mapper) SerologiesForAllele(a types.Typing) []types.MatchingSerology {
	names, ok := m.assigned[a.WMDAName()]
	if !ok {
		return nil
	}

	var sets [][]types.MatchingSerology
	for _, name := range names {
		if set, ok := m.expansions[serologyKey(a.Locus, name)]; ok {
			sets = append(sets, set)
		}
	}
	return types.UnionSerologies(sets...)
}

// AllelesForSerology returns the names of alleles at locus whose assigned
// serologies intersect the given matching-serology set.
func (m *Mapper) AllelesForSerology(locus types.Locus, matches []types.MatchingSerology) []string {
	var sets [][]string
	for _, ms := range matches {
		if alleles, ok := m.assignedTo[serologyKey(locus, ms.Serology.Name)]; ok {
			sets = append(sets, alleles)
		}
	}
	return types.UnionStrings(sets...)
}
