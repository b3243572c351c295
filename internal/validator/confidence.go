package validator

import (
	"noiflow/internal/domain"
)

// Confidence bands per provenance. Model-sourced values that also survive an
// identity check score at the top of their band; values that were repaired or
// derived sit a band lower, pattern matches lower still.
const (
	scoreModelVerified = 0.95
	scoreModel         = 0.85
	scoreCalculated    = 0.70
	scorePattern       = 0.60
	scoreMissing       = 0.10
)

// Overall level thresholds over the weakest primary metric.
const (
	levelHigh   = 0.80
	levelMedium = 0.60
	levelLow    = 0.40
)

// ConfidenceScorer assigns per-field scores from provenance and consistency
// outcomes, and derives the overall level from the weakest primary metric:
// one broken primary makes the whole record unusable for underwriting, so
// averaging would overstate reliability.
type ConfidenceScorer struct{}

// NewConfidenceScorer creates a ConfidenceScorer.
func NewConfidenceScorer() *ConfidenceScorer {
	return &ConfidenceScorer{}
}

// Score computes per-field confidence and the overall level.
func (s *ConfidenceScorer) Score(provenance domain.ProvenanceMap, checks []CheckResult) (domain.FieldConfidence, domain.ConfidenceLevel) {
	verified := make(map[string]bool)
	for _, c := range checks {
		if c.Passed && !c.Repaired {
			verified[c.Field] = true
		}
	}

	fields := make(domain.FieldConfidence, len(domain.AllFields))
	for _, f := range domain.AllFields {
		switch provenance.Get(f) {
		case domain.ProvenanceModel:
			if verified[f] {
				fields[f] = scoreModelVerified
			} else {
				fields[f] = scoreModel
			}
		case domain.ProvenanceCalculated:
			fields[f] = scoreCalculated
		case domain.ProvenancePattern:
			fields[f] = scorePattern
		default:
			fields[f] = scoreMissing
		}
	}

	return fields, s.level(fields)
}

func (s *ConfidenceScorer) level(fields domain.FieldConfidence) domain.ConfidenceLevel {
	weakest := 1.0
	for _, f := range domain.PrimaryMetrics {
		if fields[f] < weakest {
			weakest = fields[f]
		}
	}
	switch {
	case weakest >= levelHigh:
		return domain.ConfidenceHigh
	case weakest >= levelMedium:
		return domain.ConfidenceMedium
	case weakest >= levelLow:
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceUncertain
	}
}
