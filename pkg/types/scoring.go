// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// ScoringInfoKind discriminates the ScoringInfo variants.
type ScoringInfoKind string

const (
	KindSerology              ScoringInfoKind = "serology"
	KindSingleAllele          ScoringInfoKind = "single-allele"
	KindMultipleAllele        ScoringInfoKind = "multiple-allele"
	KindConsolidatedMolecular ScoringInfoKind = "consolidated-molecular"
)

// ScoringInfo describes what a lookup name resolves to for scoring. The set
// of implementations is closed: SerologyScoringInfo, SingleAlleleScoringInfo,
// MultipleAlleleScoringInfo and ConsolidatedMolecularScoringInfo. Consumers
// switch on the concrete type and must handle all four.
type ScoringInfo interface {
	Kind() ScoringInfoKind
	MatchingSerologies() []MatchingSerology
	scoringInfo()
}

// SerologyScoringInfo is the scoring view of a serology lookup name. It
// carries no P- or G-groups.
type SerologyScoringInfo struct {
	Serologies []MatchingSerology `json:"serologies" yaml:"serologies"`
}

// SingleAlleleScoringInfo is the scoring view of exactly one allele. PGroup
// is empty for null expressers.
type SingleAlleleScoringInfo struct {
	AlleleName string             `json:"allele_name" yaml:"allele_name"`
	PGroup     string             `json:"p_group,omitempty" yaml:"p_group,omitempty"`
	GGroup     string             `json:"g_group,omitempty" yaml:"g_group,omitempty"`
	Serologies []MatchingSerology `json:"serologies,omitempty" yaml:"serologies,omitempty"`
}

// MultipleAlleleScoringInfo covers a name or allele string that stands for
// several alleles.
type MultipleAlleleScoringInfo struct {
	Alleles []SingleAlleleScoringInfo `json:"alleles" yaml:"alleles"`
}

// ConsolidatedMolecularScoringInfo covers an XX code: all alleles sharing a
// first field, reduced to their groups and serologies.
type ConsolidatedMolecularScoringInfo struct {
	PGroups    []string           `json:"p_groups,omitempty" yaml:"p_groups,omitempty"`
	GGroups    []string           `json:"g_groups,omitempty" yaml:"g_groups,omitempty"`
	Serologies []MatchingSerology `json:"serologies,omitempty" yaml:"serologies,omitempty"`
}

func (SerologyScoringInfo) Kind() ScoringInfoKind              { return KindSerology }
func (SingleAlleleScoringInfo) Kind() ScoringInfoKind          { return KindSingleAllele }
func (MultipleAlleleScoringInfo) Kind() ScoringInfoKind        { return KindMultipleAllele }
func (ConsolidatedMolecularScoringInfo) Kind() ScoringInfoKind { return KindConsolidatedMolecular }

func (s SerologyScoringInfo) MatchingSerologies() []MatchingSerology     { return s.Serologies }
func (s SingleAlleleScoringInfo) MatchingSerologies() []MatchingSerology { return s.Serologies }
func (s ConsolidatedMolecularScoringInfo) MatchingSerologies() []MatchingSerology {
	return s.Serologies
}

// MatchingSerologies is the union over the member alleles.
func (s MultipleAlleleScoringInfo) MatchingSerologies() []MatchingSerology {
	sets := make([][]MatchingSerology, len(s.Alleles))
	for i, a := range s.Alleles {
		sets[i] = a.Serologies
	}
	return UnionSerologies(sets...)
}

func (SerologyScoringInfo) scoringInfo()              {}
func (SingleAlleleScoringInfo) scoringInfo()          {}
func (MultipleAlleleScoringInfo) scoringInfo()        {}
func (ConsolidatedMolecularScoringInfo) scoringInfo() {}

// scoringEnvelope is the tagged wire form of a ScoringInfo.
type scoringEnvelope struct {
	Kind                  ScoringInfoKind                   `json:"kind"`
	Serology              *SerologyScoringInfo              `json:"serology,omitempty"`
	SingleAllele          *SingleAlleleScoringInfo          `json:"single_allele,omitempty"`
	MultipleAllele        *MultipleAlleleScoringInfo        `json:"multiple_allele,omitempty"`
	ConsolidatedMolecular *ConsolidatedMolecularScoringInfo `json:"consolidated_molecular,omitempty"`
}

// MarshalScoringInfo encodes info with its kind tag.
func MarshalScoringInfo(info ScoringInfo) ([]byte, error) {
	env := scoringEnvelope{}
	switch v := info.(type) {
	case SerologyScoringInfo:
		env.Kind, env.Serology = v.Kind(), &v
	case SingleAlleleScoringInfo:
		env.Kind, env.SingleAllele = v.Kind(), &v
	case MultipleAlleleScoringInfo:
		env.Kind, env.MultipleAllele = v.Kind(), &v
	case ConsolidatedMolecularScoringInfo:
		env.Kind, env.ConsolidatedMolecular = v.Kind(), &v
	default:
		return nil, fmt.Errorf("unsupported scoring info %T", info)
	}
	return json.Marshal(env)
}

// UnmarshalScoringInfo decodes the output of MarshalScoringInfo.
func UnmarshalScoringInfo(data []byte) (ScoringInfo, error) {
	var env scoringEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding scoring info: %w", err)
	}
	switch env.Kind {
	case KindSerology:
		if env.Serology != nil {
			return *env.Serology, nil
		}
	case KindSingleAllele:
		if env.SingleAllele != nil {
			return *env.SingleAllele, nil
		}
	case KindMultipleAllele:
		if env.MultipleAllele != nil {
			return *env.MultipleAllele, nil
		}
	case KindConsolidatedMolecular:
		if env.ConsolidatedMolecular != nil {
			return *env.ConsolidatedMolecular, nil
		}
	default:
		return nil, fmt.Errorf("unknown scoring info kind %q", env.Kind)
	}
	return nil, fmt.Errorf("scoring info of kind %q has no payload", env.Kind)
}
