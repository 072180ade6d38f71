// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package alleles resolves every name an allele may be looked up by to the
// allele's current name(s) in one nomenclature version. Three extractors
// contribute: renames recorded in the allele histories, truncated name
// variants, and reserved names of deleted alleles.
package alleles

import (
	"cmp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/donor-match/pkg/types"
)

// NameMapping maps a lookup name at a locus to the current allele names it
// stands for.
type NameMapping struct {
	Locus        types.Locus `json:"locus" yaml:"locus"`
	LookupName   string      `json:"lookup_name" yaml:"lookup_name"`
	CurrentNames []string    `json:"current_names" yaml:"current_names"`
}

// Result is the merged output of the extractors.
type Result struct {
	Mappings []NameMapping

	// Invalid lists allele names that could not be parsed; they contribute
	// no variants.
	Invalid []error
}

// Resolver runs the extractors. It owns the historical-name cache, so one
// Resolver should be reused across versions.
type Resolver struct {
	cache *HistoryCache
}

// NewResolver returns a Resolver with an empty cache.
func NewResolver() *Resolver {
	return &Resolver{cache: NewHistoryCache()}
}

// Cache exposes the resolver's historical-name cache.
func (r *Resolver) Cache() *HistoryCache {
	return r.cache
}

// Resolve extracts and merges the name mappings of ds. Mappings sharing a
// (locus, lookup name) are unioned, never overwritten. The result is sorted
// by locus then lookup name.
func (r *Resolver) Resolve(ds *types.Dataset) Result {
	historical := r.historicalNames(ds)

	fromHistory := historyMappings(ds)
	variants, invalid := variantMappings(ds, fromHistory, historical)
	reserved := reservedMappings(ds, historical)

	return Result{
		Mappings: mergeMappings(fromHistory, variants, reserved),
		Invalid:  invalid,
	}
}

func (r *Resolver) historicalNames(ds *types.Dataset) historicalNames {
	return r.cache.getOrCompute(ds.Version, func() historicalNames {
		h := make(historicalNames)
		for _, hist := range ds.Histories {
			if h[hist.Locus] == nil {
				h[hist.Locus] = make(map[string]bool)
			}
			for _, vn := range hist.Names {
				if vn.Name != "" {
					h[hist.Locus][vn.Name] = true
				}
			}
		}
		return h
	})
}

type locusName struct {
	locus types.Locus
	name  string
}

// historyMappings maps each history record's names to its current name. The
// current name is the one published in the dataset's version; failing that,
// the most recent name's identical-to allele. Records resolving to neither
// are skipped.
func historyMappings(ds *types.Dataset) []NameMapping {
	alleles := make(map[locusName]types.AlleleRecord, len(ds.Alleles))
	for _, a := range ds.Alleles {
		alleles[locusName{a.Locus, a.Name}] = a
	}

	var out []NameMapping
	for _, hist := range ds.Histories {
		current := nameInVersion(hist, ds.Version)
		if current == "" {
			if latest := mostRecentName(hist); latest != "" {
				if a, ok := alleles[locusName{hist.Locus, latest}]; ok {
					current = a.IdenticalTo
				}
			}
		}
		if current == "" {
			continue
		}

		out = append(out, NameMapping{Locus: hist.Locus, LookupName: current, CurrentNames: []string{current}})
		for _, vn := range hist.Names {
			if vn.Name != "" && vn.Name != current {
				out = append(out, NameMapping{Locus: hist.Locus, LookupName: vn.Name, CurrentNames: []string{current}})
			}
		}
	}
	return out
}

func nameInVersion(hist types.AlleleNameHistory, version string) string {
	for _, vn := range hist.Names {
		if vn.Version == version {
			return vn.Name
		}
	}
	return ""
}

func mostRecentName(hist types.AlleleNameHistory) string {
	var latest types.VersionedName
	for _, vn := range hist.Names {
		if vn.Name == "" {
			continue
		}
		if latest.Name == "" || CompareVersions(vn.Version, latest.Version) > 0 {
			latest = vn
		}
	}
	return latest.Name
}

// CompareVersions orders nomenclature versions. Dotted versions ("3.10.0")
// and plain integers ("3400") compare part by part numerically, a missing
// part counting as zero. Anything else compares lexically.
func CompareVersions(a, b string) int {
	ap, aok := versionParts(a)
	bp, bok := versionParts(b)
	if aok && bok {
		for i := 0; i < max(len(ap), len(bp)); i++ {
			var x, y int
			if i < len(ap) {
				x = ap[i]
			}
			if i < len(bp) {
				y = bp[i]
			}
			if c := cmp.Compare(x, y); c != 0 {
				return c
			}
		}
		return 0
	}
	return strings.Compare(a, b)
}

func versionParts(v string) ([]int, bool) {
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, false
		}
		parts[i] = n
	}
	return parts, true
}

// variantMappings maps every truncated variant of every current name to the
// current names that produce it. Variants that collide with a historical
// name at the same locus are dropped.
func variantMappings(ds *types.Dataset, fromHistory []NameMapping, historical historicalNames) ([]NameMapping, []error) {
	current := make(map[locusName]bool)
	for _, a := range ds.Alleles {
		if !a.IsDeleted {
			current[locusName{a.Locus, a.Name}] = true
		}
	}
	for _, m := range fromHistory {
		for _, name := range m.CurrentNames {
			current[locusName{m.Locus, name}] = true
		}
	}

	keys := make([]locusName, 0, len(current))
	for k := range current {
		keys = append(keys, k)
	}
	sortLocusNames(keys)

	var (
		out     []NameMapping
		invalid []error
	)
	for _, k := range keys {
		typing, err := types.NewAlleleTyping(k.locus, k.name, false)
		if err != nil {
			invalid = append(invalid, err)
			continue
		}
		for _, variant := range typing.NameVariants {
			if historical.contains(k.locus, variant) {
				continue
			}
			out = append(out, NameMapping{Locus: k.locus, LookupName: variant, CurrentNames: []string{k.name}})
		}
	}
	return out, invalid
}

// reservedMappings maps deleted alleles that appear in no history to
// themselves.
func reservedMappings(ds *types.Dataset, historical historicalNames) []NameMapping {
	var out []NameMapping
	for _, a := range ds.Alleles {
		if a.IsDeleted && !historical.contains(a.Locus, a.Name) {
			out = append(out, NameMapping{Locus: a.Locus, LookupName: a.Name, CurrentNames: []string{a.Name}})
		}
	}
	return out
}

func mergeMappings(sets ...[]NameMapping) []NameMapping {
	merged := make(map[locusName][]string)
	for _, set := range sets {
		for _, m := range set {
			k := locusName{m.Locus, m.LookupName}
			merged[k] = types.UnionStrings(merged[k], m.CurrentNames)
		}
	}

	keys := make([]locusName, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sortLocusNames(keys)

	out := make([]NameMapping, len(keys))
	for i, k := range keys {
		out[i] = NameMapping{Locus: k.locus, LookupName: k.name, CurrentNames: merged[k]}
	}
	return out
}

func sortLocusNames(keys []locusName) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].locus != keys[j].locus {
			return keys[i].locus < keys[j].locus
		}
		return keys[i].name < keys[j].name
	})
}
