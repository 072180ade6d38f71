// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"github.com/rs/zerolog"

	"github.com/pdiddy/donor-match/internal/logging"
	"github.com/pdiddy/donor-match/internal/metrics"
	"github.com/pdiddy/donor-match/pkg/types"
)

// LocusPair is one individual's two typings at a locus. Phase is unknown,
// so the positions are unordered. A nil position is untyped.
type LocusPair struct {
	Position1 types.ScoringInfo
	Position2 types.ScoringInfo
}

// Orientation says which donor position a patient position was paired with.
type Orientation string

const (
	Direct Orientation = "direct"
	Cross  Orientation = "cross"
)

// PositionResult is the outcome for one patient position.
type PositionResult struct {
	Confidence  MatchConfidence
	Grade       MatchGrade
	Orientation Orientation
}

// LocusResult holds the results for both patient positions.
type LocusResult struct {
	Position1 PositionResult
	Position2 PositionResult
}

// ClassifyLocus classifies both patient positions against the donor under
// the direct pairing (1-1, 2-2) and the cross pairing (1-2, 2-1), and keeps,
// per position, whichever pairing gives the higher confidence. Ties go to
// the better grade, then to the direct pairing. Swapping the donor's
// positions never changes the confidences or grades reported.
func ClassifyLocus(patient, donor LocusPair) (LocusResult, error) {
	p1d1, err := evaluate(patient.Position1, donor.Position1, Direct)
	if err != nil {
		return LocusResult{}, err
	}
	p2d2, err := evaluate(patient.Position2, donor.Position2, Direct)
	if err != nil {
		return LocusResult{}, err
	}
	p1d2, err := evaluate(patient.Position1, donor.Position2, Cross)
	if err != nil {
		return LocusResult{}, err
	}
	p2d1, err := evaluate(patient.Position2, donor.Position1, Cross)
	if err != nil {
		return LocusResult{}, err
	}

	return LocusResult{
		Position1: best(p1d1, p1d2),
		Position2: best(p2d2, p2d1),
	}, nil
}

func evaluate(patient, donor types.ScoringInfo, o Orientation) (PositionResult, error) {
	c, err := Classify(patient, donor)
	if err != nil {
		return PositionResult{}, err
	}
	g, err := Grade(patient, donor)
	if err != nil {
		return PositionResult{}, err
	}
	return PositionResult{Confidence: c, Grade: g, Orientation: o}, nil
}

func best(direct, cross PositionResult) PositionResult {
	switch {
	case cross.Confidence > direct.Confidence:
		return cross
	case cross.Confidence == direct.Confidence && cross.Grade > direct.Grade:
		return cross
	}
	return direct
}

// Scorer wraps ClassifyLocus with logging and metrics. The zero value is
// usable and records nothing.
type Scorer struct {
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewScorer returns a Scorer reporting to log and m. m may be nil.
func NewScorer(log zerolog.Logger, m *metrics.Metrics) *Scorer {
	return &Scorer{log: logging.Component(log, "scoring"), metrics: m}
}

// ClassifyLocus is the package-level ClassifyLocus with each position's
// confidence counted.
func (s *Scorer) ClassifyLocus(locus types.Locus, patient, donor LocusPair) (LocusResult, error) {
	res, err := ClassifyLocus(patient, donor)
	if err != nil {
		s.log.Warn().Err(err).Str("locus", string(locus)).Msg("classification failed")
		return res, err
	}
	for _, p := range []PositionResult{res.Position1, res.Position2} {
		s.metrics.CountClassification(p.Confidence.String())
	}
	s.log.Debug().
		Str("locus", string(locus)).
		Stringer("position1", res.Position1.Confidence).
		Stringer("position2", res.Position2.Confidence).
		Msg("locus classified")
	return res, nil
}
