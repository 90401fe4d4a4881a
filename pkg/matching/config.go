package matching

import (
	"time"

	"github.com/Ramsey-B/clover/config"
)

// Config holds the tunables for the matching pipeline
type Config struct {
	// Exact matching
	ExactMinScore float64
	ExactWeights  map[string]float64

	// Vector matching
	VectorSimilarityThreshold float64
	VectorMaxResults          int

	// Fuzzy matching
	FuzzySimilarityThreshold float64
	FuzzyMaxResults          int
	FuzzyAlgorithm           string

	// Classification thresholds
	ExactThreshold          float64
	HighConfidenceThreshold float64
	PotentialThreshold      float64

	// Strategy toggles
	EnableExact  bool
	EnableVector bool
	EnableFuzzy  bool

	// Business rules
	EnableBusinessRules    bool
	IndustryBoost          float64
	LocationBoost          float64
	CountryMismatchPenalty float64
	RevenueBoostEnabled    bool

	// Resolution
	ResolveTimeout time.Duration
	LockTTL        time.Duration
}

// DefaultConfig returns the default matching configuration
func DefaultConfig() Config {
	return Config{
		ExactMinScore: 0.4,
		ExactWeights: map[string]float64{
			FieldCompanyName: 0.4,
			FieldEmail:       0.4,
			FieldPhone:       0.2,
		},
		VectorSimilarityThreshold: 0.7,
		VectorMaxResults:          5,
		FuzzySimilarityThreshold:  0.8,
		FuzzyMaxResults:           10,
		FuzzyAlgorithm:            AlgorithmRatio,
		ExactThreshold:            0.95,
		HighConfidenceThreshold:   0.9,
		PotentialThreshold:        0.75,
		EnableExact:               true,
		EnableVector:              true,
		EnableFuzzy:               true,
		EnableBusinessRules:       true,
		IndustryBoost:             1.2,
		LocationBoost:             1.1,
		CountryMismatchPenalty:    0.8,
		RevenueBoostEnabled:       true,
		ResolveTimeout:            30 * time.Second,
		LockTTL:                   time.Minute,
	}
}

// FromAppConfig builds a matching Config from the service configuration
func FromAppConfig(cfg config.Config) Config {
	return Config{
		ExactMinScore: cfg.ExactMatchMinScore,
		ExactWeights: map[string]float64{
			FieldCompanyName: cfg.ExactCompanyNameWeight,
			FieldEmail:       cfg.ExactEmailWeight,
			FieldPhone:       cfg.ExactPhoneWeight,
		},
		VectorSimilarityThreshold: cfg.VectorSimilarityThreshold,
		VectorMaxResults:          cfg.VectorMaxResults,
		FuzzySimilarityThreshold:  cfg.FuzzySimilarityThreshold,
		FuzzyMaxResults:           cfg.FuzzyMaxResults,
		FuzzyAlgorithm:            cfg.FuzzyAlgorithm,
		ExactThreshold:            cfg.ExactMatchThreshold,
		HighConfidenceThreshold:   cfg.HighConfidenceThreshold,
		PotentialThreshold:        cfg.PotentialMatchThreshold,
		EnableExact:               cfg.EnableExactMatching,
		EnableVector:              cfg.EnableVectorMatching,
		EnableFuzzy:               cfg.EnableFuzzyMatching,
		EnableBusinessRules:       cfg.EnableBusinessRules,
		IndustryBoost:             cfg.IndustryMatchBoost,
		LocationBoost:             cfg.LocationMatchBoost,
		CountryMismatchPenalty:    cfg.CountryMismatchPenalty,
		RevenueBoostEnabled:       cfg.RevenueSizeBoost,
		ResolveTimeout:            cfg.ResolveTimeout,
		LockTTL:                   cfg.ResolveLockTTL,
	}
}
