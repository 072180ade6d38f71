// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/donor-match/pkg/types"
)

// Lookup is the read side of a compiled dictionary.
type Lookup interface {
	ScoringLookup(locus types.Locus, name string, method types.TypingMethod) (types.ScoringInfo, bool)
}

// ResolveAlleleString builds scoring info for a slash-separated allele
// string such as "01:01/01:02". Each name is looked up as a molecular name
// and the alleles it stands for are pooled. A string naming one allele in
// total yields a SingleAlleleScoringInfo. A name missing from the
// dictionary is a *types.UnresolvedNameError; first-field names stand for
// groups rather than alleles and are rejected.
func ResolveAlleleString(dict Lookup, locus types.Locus, alleleString string) (types.ScoringInfo, error) {
	byName := make(map[string]types.SingleAlleleScoringInfo)

	for _, name := range strings.Split(alleleString, "/") {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("allele string %q has an empty name", alleleString)
		}
		info, ok := dict.ScoringLookup(locus, name, types.MethodMolecular)
		if !ok {
			return nil, &types.UnresolvedNameError{Locus: locus, Name: name}
		}

		switch v := info.(type) {
		case types.SingleAlleleScoringInfo:
			byName[v.AlleleName] = v
		case types.MultipleAlleleScoringInfo:
			for _, a := range v.Alleles {
				byName[a.AlleleName] = a
			}
		case types.ConsolidatedMolecularScoringInfo, types.SerologyScoringInfo:
			return nil, fmt.Errorf("allele string %q: %s is a %s name, not an allele", alleleString, name, v.Kind())
		default:
			return nil, fmt.Errorf("allele string %q: unsupported scoring info %T", alleleString, info)
		}
	}

	alleles := make([]types.SingleAlleleScoringInfo, 0, len(byName))
	for _, a := range byName {
		alleles = append(alleles, a)
	}
	sort.Slice(alleles, func(i, j int) bool {
		return alleles[i].AlleleName < alleles[j].AlleleName
	})
	if len(alleles) == 1 {
		return alleles[0], nil
	}
	return types.MultipleAlleleScoringInfo{Alleles: alleles}, nil
}
