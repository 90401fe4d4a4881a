package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/tracing"
	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// exact matches are the most trustworthy signal, so their confidence gets a
// flat uplift over the raw field score
const exactConfidenceBoost = 1.2

// ExactMatcher scores candidates by weighted agreement on normalized
// identity fields
type ExactMatcher struct {
	repo   CandidateReader
	scorer *Scorer
	config Config
	logger ectologger.Logger
}

func NewExactMatcher(repo CandidateReader, config Config, logger ectologger.Logger) *ExactMatcher {
	return &ExactMatcher{
		repo:   repo,
		scorer: NewScorer(),
		config: config,
		logger: logger,
	}
}

func (m *ExactMatcher) Name() string {
	return StrategyExact
}

func (m *ExactMatcher) Enabled() bool {
	return m.config.EnableExact
}

// FindMatches looks up customers agreeing on any provided identity field and
// scores each by the sum of the weights of the fields that matched
func (m *ExactMatcher) FindMatches(ctx context.Context, incoming *models.IncomingCustomer) ([]*models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.ExactMatcher.FindMatches")
	defer span.End()

	criteria := m.buildCriteria(incoming)
	if len(criteria) == 0 {
		m.logger.WithContext(ctx).WithFields(map[string]any{
			"request_id": incoming.RequestID,
		}).Debug("No exact match criteria available")
		return []*models.MatchCandidate{}, nil
	}

	customers, err := m.repo.FindByExactCriteria(ctx, criteria)
	if err != nil {
		return nil, clovererrors.NewStrategyError(StrategyExact, err)
	}

	candidates := make([]*models.MatchCandidate, 0, len(customers))
	for _, customer := range customers {
		matches := m.compareFields(criteria, customer)
		score := m.scorer.WeightedSum(matches, m.config.ExactWeights)
		if score < m.config.ExactMinScore {
			continue
		}

		// field agreement is evidence enough on its own; no rules pass here
		confidence := clamp(score * exactConfidenceBoost)

		matchedFields := make([]string, 0, len(matches))
		for field, matched := range matches {
			if matched {
				matchedFields = append(matchedFields, field)
			}
		}

		candidates = append(candidates, &models.MatchCandidate{
			IncomingCustomerID: incoming.RequestID,
			MatchedCustomerID:  customer.CustomerID,
			SimilarityScore:    score,
			ConfidenceLevel:    confidence,
			MatchType:          Classify(score, m.config),
			MatchCriteria: models.MatchCriteria{
				"strategy":       StrategyExact,
				"matched_fields": matchedFields,
			},
		})
	}

	m.logger.WithContext(ctx).WithFields(map[string]any{
		"request_id":      incoming.RequestID,
		"candidate_count": len(candidates),
	}).Debug("Exact matching complete")

	return candidates, nil
}

// buildCriteria normalizes the identity fields present on the record; blank
// fields are left out so they cannot match on empty string
func (m *ExactMatcher) buildCriteria(incoming *models.IncomingCustomer) map[string]string {
	criteria := make(map[string]string)

	if v := normalizers.ApplyChain(incoming.CompanyName, "trim", "lowercase"); v != "" {
		criteria[FieldCompanyName] = v
	}
	if incoming.Email != nil {
		if v := normalizers.NormalizeEmail(*incoming.Email); v != "" {
			criteria[FieldEmail] = v
		}
	}
	if incoming.Phone != nil {
		if v := normalizers.NormalizePhone(*incoming.Phone); v != "" {
			criteria[FieldPhone] = v
		}
	}

	return criteria
}

func (m *ExactMatcher) compareFields(criteria map[string]string, customer *models.Customer) map[string]bool {
	matches := make(map[string]bool, len(criteria))

	if v, ok := criteria[FieldCompanyName]; ok {
		matches[FieldCompanyName] = normalizers.ApplyChain(customer.CompanyName, "trim", "lowercase") == v
	}
	if v, ok := criteria[FieldEmail]; ok && customer.Email != nil {
		matches[FieldEmail] = normalizers.NormalizeEmail(*customer.Email) == v
	}
	if v, ok := criteria[FieldPhone]; ok && customer.Phone != nil {
		matches[FieldPhone] = normalizers.NormalizePhone(*customer.Phone) == v
	}

	return matches
}
