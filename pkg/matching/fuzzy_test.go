package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

func scoredCustomer(id int64, companyName string) *models.ScoredCustomer {
	return &models.ScoredCustomer{
		Customer: models.Customer{CustomerID: id, CompanyName: companyName},
	}
}

func TestFuzzyMatcher_FindMatches(t *testing.T) {
	t.Run("should skip matching without a company name", func(t *testing.T) {
		repo := &fakeCandidateReader{}
		matcher := NewFuzzyMatcher(repo, DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{RequestID: 1, CompanyName: "  "}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		assert.NoError(t, err)
		assert.Empty(t, candidates)
		assert.Empty(t, repo.fuzzyCalls)
	})

	t.Run("should query a wide trigram pool", func(t *testing.T) {
		repo := &fakeCandidateReader{}
		matcher := NewFuzzyMatcher(repo, DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{RequestID: 1, CompanyName: " Acme Corp "}

		_, err := matcher.FindMatches(context.Background(), incoming)
		require.NoError(t, err)
		require.Len(t, repo.fuzzyCalls, 1)

		assert.Equal(t, "acme corp", repo.fuzzyCalls[0].name)
		assert.Equal(t, trigramPoolThreshold, repo.fuzzyCalls[0].minSimilarity)
		assert.Equal(t, DefaultConfig().FuzzyMaxResults*trigramPoolMultiplier, repo.fuzzyCalls[0].limit)
	})

	t.Run("should keep only candidates at or above the threshold", func(t *testing.T) {
		repo := &fakeCandidateReader{
			fuzzyResults: []*models.ScoredCustomer{
				scoredCustomer(10, "acme corp"),
				scoredCustomer(11, "zenith holdings"),
			},
		}
		matcher := NewFuzzyMatcher(repo, DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{RequestID: 1, CompanyName: "acme corp"}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		assert.Equal(t, int64(10), candidates[0].MatchedCustomerID)
		assert.Equal(t, 1.0, candidates[0].SimilarityScore)
		assert.Equal(t, candidates[0].SimilarityScore, candidates[0].ConfidenceLevel)
	})

	t.Run("should sort candidates best first and cap the result count", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FuzzySimilarityThreshold = 0.5
		cfg.FuzzyMaxResults = 2

		repo := &fakeCandidateReader{
			fuzzyResults: []*models.ScoredCustomer{
				scoredCustomer(10, "acme corporation"),
				scoredCustomer(11, "acme corp"),
				scoredCustomer(12, "acme corp."),
			},
		}
		matcher := NewFuzzyMatcher(repo, cfg, noopLogger())

		incoming := &models.IncomingCustomer{RequestID: 1, CompanyName: "acme corp"}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		require.NoError(t, err)
		require.Len(t, candidates, 2)

		assert.Equal(t, int64(11), candidates[0].MatchedCustomerID)
		assert.GreaterOrEqual(t, candidates[0].ConfidenceLevel, candidates[1].ConfidenceLevel)
	})

	t.Run("should take the better of company and contact name scores", func(t *testing.T) {
		contact := "Jane Smith"
		repo := &fakeCandidateReader{
			fuzzyResults: []*models.ScoredCustomer{
				{
					Customer: models.Customer{
						CustomerID:  10,
						CompanyName: "Unrelated Holdings",
						ContactName: &contact,
					},
				},
			},
		}
		matcher := NewFuzzyMatcher(repo, DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{
			RequestID:   1,
			CompanyName: "Acme Corp",
			ContactName: strPtr("jane smith"),
		}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		assert.Equal(t, 1.0, candidates[0].SimilarityScore)
		assert.Equal(t, "contact_name", candidates[0].MatchCriteria["compared_field"])
	})

	t.Run("should classify scores through the standard ladder", func(t *testing.T) {
		repo := &fakeCandidateReader{
			fuzzyResults: []*models.ScoredCustomer{
				// ratio of 18/22 against "acme corp"
				scoredCustomer(10, "acme corp ltd"),
			},
		}
		matcher := NewFuzzyMatcher(repo, DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{RequestID: 1, CompanyName: "acme corp"}

		candidates, err := matcher.FindMatches(context.Background(), incoming)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		assert.Equal(t, models.MatchTypePotential, candidates[0].MatchType)
	})

	t.Run("should wrap repository failures as strategy errors", func(t *testing.T) {
		repo := &fakeCandidateReader{fuzzyErr: errors.New("connection refused")}
		matcher := NewFuzzyMatcher(repo, DefaultConfig(), noopLogger())

		incoming := &models.IncomingCustomer{RequestID: 1, CompanyName: "acme corp"}

		_, err := matcher.FindMatches(context.Background(), incoming)
		require.Error(t, err)
		assert.True(t, clovererrors.IsStrategyError(err))
	})
}
