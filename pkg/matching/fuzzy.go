package matching

import (
	"context"
	"sort"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/tracing"
	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

// trigram pool settings. The pool is deliberately wider than the final
// threshold; trigram similarity and sequence ratio disagree enough that
// filtering at the configured threshold in SQL would drop real matches.
const (
	trigramPoolThreshold  = 0.3
	trigramPoolMultiplier = 5
)

// FuzzyMatcher scores candidates by approximate name similarity. Candidates
// come from a trigram pool in the database and are re-scored locally with the
// configured algorithm.
type FuzzyMatcher struct {
	repo   CandidateReader
	scorer *Scorer
	config Config
	logger ectologger.Logger
}

func NewFuzzyMatcher(repo CandidateReader, config Config, logger ectologger.Logger) *FuzzyMatcher {
	return &FuzzyMatcher{
		repo:   repo,
		scorer: NewScorer(),
		config: config,
		logger: logger,
	}
}

func (m *FuzzyMatcher) Name() string {
	return StrategyFuzzy
}

func (m *FuzzyMatcher) Enabled() bool {
	return m.config.EnableFuzzy
}

// FindMatches compares names with the configured similarity algorithm. The
// score is the best of the company name and contact name comparisons.
// Business rules are not applied; name-only evidence does not support
// profile-level adjustments.
func (m *FuzzyMatcher) FindMatches(ctx context.Context, incoming *models.IncomingCustomer) ([]*models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.FuzzyMatcher.FindMatches")
	defer span.End()

	companyName := strings.ToLower(strings.TrimSpace(incoming.CompanyName))
	if companyName == "" {
		m.logger.WithContext(ctx).WithFields(map[string]any{
			"request_id": incoming.RequestID,
		}).Debug("No company name available, skipping fuzzy matching")
		return []*models.MatchCandidate{}, nil
	}

	poolLimit := m.config.FuzzyMaxResults * trigramPoolMultiplier
	pool, err := m.repo.FindByFuzzySimilarity(ctx, companyName, trigramPoolThreshold, poolLimit)
	if err != nil {
		return nil, clovererrors.NewStrategyError(StrategyFuzzy, err)
	}

	var contactName string
	if incoming.ContactName != nil {
		contactName = strings.ToLower(strings.TrimSpace(*incoming.ContactName))
	}

	candidates := make([]*models.MatchCandidate, 0, len(pool))
	for _, hit := range pool {
		score, comparedField := m.bestScore(companyName, contactName, &hit.Customer)
		if score < m.config.FuzzySimilarityThreshold {
			continue
		}

		candidates = append(candidates, &models.MatchCandidate{
			IncomingCustomerID: incoming.RequestID,
			MatchedCustomerID:  hit.CustomerID,
			SimilarityScore:    score,
			ConfidenceLevel:    score,
			MatchType:          Classify(score, m.config),
			MatchCriteria: models.MatchCriteria{
				"strategy":       StrategyFuzzy,
				"algorithm":      m.config.FuzzyAlgorithm,
				"compared_field": comparedField,
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ConfidenceLevel > candidates[j].ConfidenceLevel
	})
	if len(candidates) > m.config.FuzzyMaxResults {
		candidates = candidates[:m.config.FuzzyMaxResults]
	}

	m.logger.WithContext(ctx).WithFields(map[string]any{
		"request_id":      incoming.RequestID,
		"pool_size":       len(pool),
		"candidate_count": len(candidates),
	}).Debug("Fuzzy matching complete")

	return candidates, nil
}

func (m *FuzzyMatcher) bestScore(companyName, contactName string, customer *models.Customer) (float64, string) {
	best := m.scorer.Similarity(m.config.FuzzyAlgorithm, companyName, strings.ToLower(strings.TrimSpace(customer.CompanyName)))
	field := FieldCompanyName

	if contactName != "" && customer.ContactName != nil {
		contactScore := m.scorer.Similarity(m.config.FuzzyAlgorithm, contactName, strings.ToLower(strings.TrimSpace(*customer.ContactName)))
		if contactScore > best {
			best = contactScore
			field = "contact_name"
		}
	}

	return best, field
}
