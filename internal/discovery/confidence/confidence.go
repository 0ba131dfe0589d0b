// Package confidence scores discovered candidates by completeness and source
// reliability. The score orders the review queue; it is advisory only and
// never approves anything by itself.
package confidence

import (
	"gleaner/internal/discovery/extract"
	"gleaner/internal/discovery/sources"
)

// Additive field weights. Clamped to [0,1] after summing.
const (
	weightName        = 0.20
	weightAgency      = 0.15
	weightWebsite     = 0.15
	weightContact     = 0.10
	weightDeadline    = 0.10
	weightBenefit     = 0.10
	weightEligibility = 0.10
)

// Source reliability bonuses by type.
var sourceBonus = map[string]float64{
	sources.TypeGrantsAPI: 0.10,
	sources.TypeFeed:      0.08,
	sources.TypeWebScrape: 0.05,
}

const unknownSourceBonus = 0.05

// Score computes the confidence of a candidate in [0,1].
func Score(candidate *extract.Candidate, sourceType string) float64 {
	score := 0.0

	if candidate.Name != "" {
		score += weightName
	}
	if candidate.Agency != "" {
		score += weightAgency
	}
	if candidate.Website != "" {
		score += weightWebsite
	}
	if candidate.Phone != "" || candidate.Email != "" {
		score += weightContact
	}
	if candidate.Deadline != "" {
		score += weightDeadline
	}
	if candidate.MaxBenefit != "" {
		score += weightBenefit
	}
	if candidate.EligibilitySummary != "" {
		score += weightEligibility
	}

	bonus, ok := sourceBonus[sourceType]
	if !ok {
		bonus = unknownSourceBonus
	}
	score += bonus

	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}

// Label buckets a score for display.
func Label(score float64) string {
	switch {
	case score >= 0.8:
		return "High"
	case score >= 0.5:
		return "Medium"
	default:
		return "Low"
	}
}

// AutoApproveEligible flags scores at or above the configured threshold.
// Flagging is informational; approval remains a human action.
func AutoApproveEligible(score, threshold float64) bool {
	return score >= threshold
}
