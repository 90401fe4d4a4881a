package matching

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// revenue adjustment applied when two companies are of comparable size
const (
	revenueRatioFloor     = 0.8
	revenueSimilarityBump = 1.1
)

// RulesEngine adjusts a candidate's confidence using profile-level evidence
// that the raw field or vector score cannot see
type RulesEngine struct {
	config Config
}

func NewRulesEngine(config Config) *RulesEngine {
	return &RulesEngine{config: config}
}

// Apply returns the adjusted confidence for a candidate, clamped to [0, 1].
// With rules disabled the base confidence passes through (still clamped).
func (e *RulesEngine) Apply(base float64, incoming *models.IncomingCustomer, candidate *models.Customer) float64 {
	if !e.config.EnableBusinessRules {
		return clamp(base)
	}

	confidence := base

	if bothEqualFold(incoming.Industry, candidate.Industry) {
		confidence *= e.config.IndustryBoost
	}

	// location evidence keys on country only; when both sides carry one the
	// rule always adjusts, one way or the other
	if bothPresent(incoming.Country, candidate.Country) {
		if equalFold(*incoming.Country, *candidate.Country) {
			confidence *= e.config.LocationBoost
		} else {
			confidence *= e.config.CountryMismatchPenalty
		}
	}

	if e.config.RevenueBoostEnabled && incoming.AnnualRevenue != nil && candidate.AnnualRevenue != nil {
		a, b := *incoming.AnnualRevenue, *candidate.AnnualRevenue
		if a > 0 && b > 0 {
			ratio := min(a, b) / max(a, b)
			if ratio > revenueRatioFloor {
				confidence *= revenueSimilarityBump
			}
		}
	}

	return clamp(confidence)
}

// Classify maps a confidence onto a match type via the threshold ladder
func Classify(confidence float64, config Config) models.MatchType {
	switch {
	case confidence >= config.ExactThreshold:
		return models.MatchTypeExact
	case confidence >= config.HighConfidenceThreshold:
		return models.MatchTypeHighConfidence
	case confidence >= config.PotentialThreshold:
		return models.MatchTypePotential
	default:
		return models.MatchTypeLowConfidence
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func bothPresent(a, b *string) bool {
	return a != nil && *a != "" && b != nil && *b != ""
}

func bothEqualFold(a, b *string) bool {
	return bothPresent(a, b) && equalFold(*a, *b)
}
