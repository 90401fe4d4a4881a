package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/vector"
)

func unitEmbedding() vector.Vector {
	return vector.Vector{1, 0, 0}
}

func TestVectorMatcher_FindMatches(t *testing.T) {
	t.Run("should skip matching when the embedding is missing", func(t *testing.T) {
		repo := &fakeCandidateReader{}
		matcher := NewVectorMatcher(repo, NewRulesEngine(DefaultConfig()), DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{RequestID: 1, CompanyName: "Acme Corp"}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		assert.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("should classify a strong similarity as an exact match", func(t *testing.T) {
		repo := &fakeCandidateReader{
			vectorResults: []*models.ScoredCustomer{
				{
					Customer:        models.Customer{CustomerID: 10, CompanyName: "Acme Corp"},
					SimilarityScore: 0.96,
				},
			},
		}
		matcher := NewVectorMatcher(repo, NewRulesEngine(DefaultConfig()), DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{
			RequestID:            1,
			CompanyName:          "Acme Corp",
			FullProfileEmbedding: unitEmbedding(),
		}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		assert.Equal(t, int64(10), candidates[0].MatchedCustomerID)
		assert.InDelta(t, 0.96, candidates[0].SimilarityScore, 1e-9)
		assert.InDelta(t, 0.96, candidates[0].ConfidenceLevel, 1e-9)
		assert.Equal(t, models.MatchTypeExact, candidates[0].MatchType)
		assert.Equal(t, "cosine_similarity", candidates[0].MatchCriteria["method"])
	})

	t.Run("should apply business rules to each hit", func(t *testing.T) {
		repo := &fakeCandidateReader{
			vectorResults: []*models.ScoredCustomer{
				{
					Customer: models.Customer{
						CustomerID:  10,
						CompanyName: "Acme Corp",
						Industry:    strPtr("Software"),
					},
					SimilarityScore: 0.75,
				},
			},
		}
		matcher := NewVectorMatcher(repo, NewRulesEngine(DefaultConfig()), DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{
			RequestID:            1,
			CompanyName:          "Acme Corp",
			Industry:             strPtr("Software"),
			FullProfileEmbedding: unitEmbedding(),
		}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		// raw similarity is preserved, confidence carries the industry boost,
		// and the type still reflects the raw similarity
		assert.InDelta(t, 0.75, candidates[0].SimilarityScore, 1e-9)
		assert.InDelta(t, 0.9, candidates[0].ConfidenceLevel, 1e-9)
		assert.Equal(t, models.MatchTypePotential, candidates[0].MatchType)
	})

	t.Run("should not downgrade the match type when rules lower the confidence", func(t *testing.T) {
		repo := &fakeCandidateReader{
			vectorResults: []*models.ScoredCustomer{
				{
					Customer: models.Customer{
						CustomerID:  10,
						CompanyName: "Acme Corp",
						Country:     strPtr("France"),
					},
					SimilarityScore: 0.95,
				},
			},
		}
		matcher := NewVectorMatcher(repo, NewRulesEngine(DefaultConfig()), DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{
			RequestID:            1,
			CompanyName:          "Acme Corp",
			Country:              strPtr("Germany"),
			FullProfileEmbedding: unitEmbedding(),
		}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		// the country penalty moves the confidence but the type is assigned
		// from the 0.95 similarity
		assert.Equal(t, models.MatchTypeExact, candidates[0].MatchType)
		assert.InDelta(t, 0.76, candidates[0].ConfidenceLevel, 1e-9)
	})

	t.Run("should wrap repository failures as strategy errors", func(t *testing.T) {
		repo := &fakeCandidateReader{vectorErr: errors.New("connection refused")}
		matcher := NewVectorMatcher(repo, NewRulesEngine(DefaultConfig()), DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{
			RequestID:            1,
			CompanyName:          "Acme Corp",
			FullProfileEmbedding: unitEmbedding(),
		}

		_, err := matcher.FindMatches(context.Background(), incoming)
		require.Error(t, err)
		assert.True(t, clovererrors.IsStrategyError(err))
	})
}
