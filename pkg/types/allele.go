// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"sort"
	"strings"
)

const (
	fieldDelimiter    = ":"
	expressionLetters = "NLSQCA"
	nullSuffix        = "N"
	maxVariantFields  = 4
)

// AlleleTyping is a molecular typing. The name derivatives are computed once
// at construction; the struct is a value and never mutated afterwards.
type AlleleTyping struct {
	Typing `yaml:",inline"`

	// Fields are the colon-delimited name components with the expression
	// suffix stripped. Never empty.
	Fields []string `json:"fields" yaml:"fields"`

	// ExpressionSuffix is the trailing expression letter (N, L, S, Q, C, A) or "".
	ExpressionSuffix string `json:"expression_suffix,omitempty" yaml:"expression_suffix,omitempty"`

	IsNullExpresser bool   `json:"is_null_expresser,omitempty" yaml:"is_null_expresser,omitempty"`
	FirstField      string `json:"first_field" yaml:"first_field"`

	TwoFieldNameWithSuffix    string `json:"two_field_name_with_suffix" yaml:"two_field_name_with_suffix"`
	TwoFieldNameWithoutSuffix string `json:"two_field_name_without_suffix" yaml:"two_field_name_without_suffix"`

	// NameVariants holds the 2, 3 and 4 field truncations, with and without
	// the suffix, that differ from Name. Sorted.
	NameVariants []string `json:"name_variants,omitempty" yaml:"name_variants,omitempty"`
}

// NewAlleleTyping parses name and derives its truncations.
func NewAlleleTyping(locus Locus, name string, deleted bool) (AlleleTyping, error) {
	fields, suffix, err := splitAlleleName(name)
	if err != nil {
		return AlleleTyping{}, err
	}

	a := AlleleTyping{
		Typing: Typing{
			Locus:     locus,
			Name:      name,
			Method:    MethodMolecular,
			IsDeleted: deleted,
		},
		Fields:           fields,
		ExpressionSuffix: suffix,
		IsNullExpresser:  suffix == nullSuffix,
		FirstField:       fields[0],
	}

	if len(fields) >= 2 {
		a.TwoFieldNameWithSuffix, _ = a.Truncate(2, true)
		a.TwoFieldNameWithoutSuffix, _ = a.Truncate(2, false)
	} else {
		a.TwoFieldNameWithSuffix = name
		a.TwoFieldNameWithoutSuffix = fields[0]
	}

	a.NameVariants = a.variants()
	return a, nil
}

// MustAlleleTyping is NewAlleleTyping for fixed, known-good names.
func MustAlleleTyping(locus Locus, name string) AlleleTyping {
	a, err := NewAlleleTyping(locus, name, false)
	if err != nil {
		panic(err)
	}
	return a
}

// Truncate returns the first n fields joined by ":" with the expression
// suffix appended when withSuffix is set. It fails when fewer than n fields
// exist.
func (a AlleleTyping) Truncate(n int, withSuffix bool) (string, error) {
	if n < 1 || n > len(a.Fields) {
		return "", fmt.Errorf("cannot truncate allele %s to %d fields: it has %d", a.Name, n, len(a.Fields))
	}
	s := strings.Join(a.Fields[:n], fieldDelimiter)
	if withSuffix {
		s += a.ExpressionSuffix
	}
	return s, nil
}

func (a AlleleTyping) variants() []string {
	seen := make(map[string]bool)
	for n := 2; n <= maxVariantFields && n <= len(a.Fields); n++ {
		for _, withSuffix := range []bool{false, true} {
			v, err := a.Truncate(n, withSuffix)
			if err != nil || v == a.Name {
				continue
			}
			seen[v] = true
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

func splitAlleleName(name string) ([]string, string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, "", fmt.Errorf("allele name is empty")
	}

	var suffix string
	last := trimmed[len(trimmed)-1:]
	if strings.Contains(expressionLetters, strings.ToUpper(last)) {
		suffix = strings.ToUpper(last)
		trimmed = trimmed[:len(trimmed)-1]
	}

	fields := strings.Split(trimmed, fieldDelimiter)
	for _, f := range fields {
		if f == "" {
			return nil, "", fmt.Errorf("allele name %q has an empty field", name)
		}
	}
	return fields, suffix, nil
}
