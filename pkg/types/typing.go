// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the donor-match pipeline:
// typings and their name derivatives, the raw reference dataset, compiled
// lookup records, scoring infos, and stage configuration.
package types

import (
	"fmt"
	"strings"
)

// Locus is a typed position in the genome.
type Locus string

const (
	LocusA    Locus = "A"
	LocusB    Locus = "B"
	LocusC    Locus = "C"
	LocusDpb1 Locus = "DPB1"
	LocusDqb1 Locus = "DQB1"
	LocusDrb1 Locus = "DRB1"
)

// AllLoci lists the supported loci in reporting order.
var AllLoci = []Locus{LocusA, LocusB, LocusC, LocusDpb1, LocusDqb1, LocusDrb1}

var serologyLocusNames = map[Locus]string{
	LocusA:    "A",
	LocusB:    "B",
	LocusC:    "Cw",
	LocusDpb1: "DP",
	LocusDqb1: "DQ",
	LocusDrb1: "DR",
}

// MolecularName returns the WMDA molecular locus prefix, e.g. "DRB1*".
func (l Locus) MolecularName() string {
	return string(l) + "*"
}

// SerologyName returns the WMDA serology locus name, e.g. "Cw" for C.
func (l Locus) SerologyName() string {
	return serologyLocusNames[l]
}

// ParseLocus accepts a locus in its canonical, molecular ("A*") or serology
// ("Cw", "DR") spelling.
func ParseLocus(s string) (Locus, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "*")
	for _, l := range AllLoci {
		if strings.EqualFold(s, string(l)) || strings.EqualFold(s, l.SerologyName()) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown locus %q", s)
}

// TypingMethod distinguishes antigen-level from allele-level typings.
type TypingMethod string

const (
	MethodSerology  TypingMethod = "serology"
	MethodMolecular TypingMethod = "molecular"
)

// ParseTypingMethod parses "serology" or "molecular" case-insensitively.
func ParseTypingMethod(s string) (TypingMethod, error) {
	switch TypingMethod(strings.ToLower(strings.TrimSpace(s))) {
	case MethodSerology:
		return MethodSerology, nil
	case MethodMolecular:
		return MethodMolecular, nil
	}
	return "", fmt.Errorf("unknown typing method %q", s)
}

// Typing identifies a genetic variant at a locus.
type Typing struct {
	Locus     Locus        `json:"locus" yaml:"locus"`
	Name      string       `json:"name" yaml:"name"`
	Method    TypingMethod `json:"method" yaml:"method"`
	IsDeleted bool         `json:"is_deleted,omitempty" yaml:"is_deleted,omitempty"`
}

// WMDAName returns the locus-qualified name, e.g. "A*01:01:01:01" or "Cw10".
func (t Typing) WMDAName() string {
	if t.Method == MethodMolecular {
		return t.Locus.MolecularName() + t.Name
	}
	return t.Locus.SerologyName() + t.Name
}

func (t Typing) String() string {
	return t.WMDAName()
}

// SerologySubtype is a serology typing's position in its antigen family.
type SerologySubtype string

const (
	SubtypeBroad      SerologySubtype = "broad"
	SubtypeSplit      SerologySubtype = "split"
	SubtypeAssociated SerologySubtype = "associated"
	SubtypeNotSplit   SerologySubtype = "not-split"
	SubtypeUnknown    SerologySubtype = "unknown"
)

// SerologyTyping is an antigen-level typing with its family subtype.
type SerologyTyping struct {
	Typing  `yaml:",inline"`
	Subtype SerologySubtype `json:"subtype" yaml:"subtype"`
}

// NewSerologyTyping returns a serology typing at locus with the given subtype.
func NewSerologyTyping(locus Locus, name string, subtype SerologySubtype, deleted bool) SerologyTyping {
	return SerologyTyping{
		Typing: Typing{
			Locus:     locus,
			Name:      name,
			Method:    MethodSerology,
			IsDeleted: deleted,
		},
		Subtype: subtype,
	}
}
