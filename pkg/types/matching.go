// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// MatchingSerology is one member of a typing's matching-equivalence set.
// A typing matches itself directly; every propagated match is indirect.
type MatchingSerology struct {
	Serology      SerologyTyping `json:"serology" yaml:"serology"`
	IsDirectMatch bool           `json:"is_direct_match" yaml:"is_direct_match"`
}

// MatchedTyping is the compiled expansion of one source typing.
type MatchedTyping struct {
	Source     Typing             `json:"source" yaml:"source"`
	Subtype    SerologySubtype    `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	PGroups    []string           `json:"p_groups,omitempty" yaml:"p_groups,omitempty"`
	GGroups    []string           `json:"g_groups,omitempty" yaml:"g_groups,omitempty"`
	Serologies []MatchingSerology `json:"serologies,omitempty" yaml:"serologies,omitempty"`
}

// SerologyNames returns the names in the matching-serology set.
func (m MatchedTyping) SerologyNames() []string {
	return MatchingSerologyNames(m.Serologies)
}

// MolecularSubtype records how specific a molecular lookup name is.
type MolecularSubtype string

const (
	MolecularNone       MolecularSubtype = ""
	MolecularFirstField MolecularSubtype = "first-field"
	MolecularTwoField   MolecularSubtype = "two-field"
	MolecularComplete   MolecularSubtype = "complete-allele"
)

var molecularRank = map[MolecularSubtype]int{
	MolecularNone:       0,
	MolecularFirstField: 1,
	MolecularTwoField:   2,
	MolecularComplete:   3,
}

// MoreSpecific returns whichever of a and b is the more specific subtype.
func MoreSpecific(a, b MolecularSubtype) MolecularSubtype {
	if molecularRank[b] > molecularRank[a] {
		return b
	}
	return a
}

// LookupKey addresses one record within a version's dictionary.
type LookupKey struct {
	Locus  Locus        `json:"locus" yaml:"locus"`
	Name   string       `json:"name" yaml:"name"`
	Method TypingMethod `json:"method" yaml:"method"`
}

func (k LookupKey) String() string {
	return string(k.Method) + ":" + string(k.Locus) + ":" + k.Name
}

// MatchingInfo is the matching-dictionary payload: what a lookup name
// matches, merged over every typing the name stands for.
type MatchingInfo struct {
	SerologySubtype  SerologySubtype    `json:"serology_subtype,omitempty" yaml:"serology_subtype,omitempty"`
	MolecularSubtype MolecularSubtype   `json:"molecular_subtype,omitempty" yaml:"molecular_subtype,omitempty"`
	AlleleNames      []string           `json:"allele_names,omitempty" yaml:"allele_names,omitempty"`
	PGroups          []string           `json:"p_groups,omitempty" yaml:"p_groups,omitempty"`
	GGroups          []string           `json:"g_groups,omitempty" yaml:"g_groups,omitempty"`
	Serologies       []MatchingSerology `json:"serologies,omitempty" yaml:"serologies,omitempty"`
}

// Merge returns the union of m and other, keeping the more specific
// molecular subtype.
func (m MatchingInfo) Merge(other MatchingInfo) MatchingInfo {
	subtype := m.SerologySubtype
	if subtype == "" {
		subtype = other.SerologySubtype
	}
	return MatchingInfo{
		SerologySubtype:  subtype,
		MolecularSubtype: MoreSpecific(m.MolecularSubtype, other.MolecularSubtype),
		AlleleNames:      UnionStrings(m.AlleleNames, other.AlleleNames),
		PGroups:          UnionStrings(m.PGroups, other.PGroups),
		GGroups:          UnionStrings(m.GGroups, other.GGroups),
		Serologies:       UnionSerologies(m.Serologies, other.Serologies),
	}
}

// LookupRecord is the compiled, persisted unit: one key in one version with
// its matching payload and its scoring payload.
type LookupRecord struct {
	Key      LookupKey    `json:"key" yaml:"key"`
	Version  string       `json:"version" yaml:"version"`
	Matching MatchingInfo `json:"matching" yaml:"matching"`
	Scoring  ScoringInfo  `json:"-" yaml:"-"`
}

// UnionStrings returns the sorted, de-duplicated union of its arguments.
func UnionStrings(sets ...[]string) []string {
	seen := make(map[string]bool)
	for _, s := range sets {
		for _, v := range s {
			if v != "" {
				seen[v] = true
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// IntersectStrings reports whether a and b share a member.
func IntersectStrings(a, b []string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}

// UnionSerologies merges matching-serology sets by name. A serology that is
// direct in any input stays direct.
func UnionSerologies(sets ...[]MatchingSerology) []MatchingSerology {
	byName := make(map[string]MatchingSerology)
	for _, s := range sets {
		for _, ms := range s {
			existing, ok := byName[ms.Serology.Name]
			if ok && existing.IsDirectMatch {
				continue
			}
			byName[ms.Serology.Name] = ms
		}
	}
	if len(byName) == 0 {
		return nil
	}
	out := make([]MatchingSerology, 0, len(byName))
	for _, ms := range byName {
		out = append(out, ms)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Serology.Name < out[j].Serology.Name
	})
	return out
}

// MatchingSerologyNames returns the sorted names in a matching-serology set.
func MatchingSerologyNames(set []MatchingSerology) []string {
	names := make([]string, len(set))
	for i, ms := range set {
		names[i] = ms.Serology.Name
	}
	sort.Strings(names)
	return names
}
