package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/tracing"
	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

// embeddings are expected unit length; anything outside this tolerance is
// logged as suspect but still queried
const normTolerance = 0.01

// VectorMatcher scores candidates by cosine similarity between full profile
// embeddings
type VectorMatcher struct {
	repo   CandidateReader
	rules  *RulesEngine
	config Config
	logger ectologger.Logger
}

func NewVectorMatcher(repo CandidateReader, rules *RulesEngine, config Config, logger ectologger.Logger) *VectorMatcher {
	return &VectorMatcher{
		repo:   repo,
		rules:  rules,
		config: config,
		logger: logger,
	}
}

func (m *VectorMatcher) Name() string {
	return StrategyVector
}

func (m *VectorMatcher) Enabled() bool {
	return m.config.EnableVector
}

// FindMatches queries the nearest customers by cosine distance and applies
// the business rules to each hit
func (m *VectorMatcher) FindMatches(ctx context.Context, incoming *models.IncomingCustomer) ([]*models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.VectorMatcher.FindMatches")
	defer span.End()

	log := m.logger.WithContext(ctx).WithFields(map[string]any{
		"request_id": incoming.RequestID,
	})

	embedding := incoming.FullProfileEmbedding
	if len(embedding) == 0 {
		log.Warn("Incoming customer has no profile embedding, skipping vector matching")
		return []*models.MatchCandidate{}, nil
	}

	if !embedding.IsUnit(normTolerance) {
		log.WithFields(map[string]any{
			"norm": embedding.Norm(),
		}).Warn("Profile embedding is not unit length")
	}

	scored, err := m.repo.FindByVectorSimilarity(ctx, embedding, m.config.VectorSimilarityThreshold, m.config.VectorMaxResults)
	if err != nil {
		return nil, clovererrors.NewStrategyError(StrategyVector, err)
	}

	candidates := make([]*models.MatchCandidate, 0, len(scored))
	for _, hit := range scored {
		// match_type reflects the raw similarity; the rules only move the
		// confidence level
		confidence := m.rules.Apply(hit.SimilarityScore, incoming, &hit.Customer)

		candidates = append(candidates, &models.MatchCandidate{
			IncomingCustomerID: incoming.RequestID,
			MatchedCustomerID:  hit.CustomerID,
			SimilarityScore:    hit.SimilarityScore,
			ConfidenceLevel:    confidence,
			MatchType:          Classify(hit.SimilarityScore, m.config),
			MatchCriteria: models.MatchCriteria{
				"strategy":       StrategyVector,
				"method":         "cosine_similarity",
				"raw_similarity": hit.SimilarityScore,
			},
		})
	}

	log.WithFields(map[string]any{
		"candidate_count": len(candidates),
	}).Debug("Vector matching complete")

	return candidates, nil
}
