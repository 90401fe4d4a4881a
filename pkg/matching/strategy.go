package matching

import (
	"context"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/vector"
)

// Strategy names, also recorded in match_criteria
const (
	StrategyExact  = "exact"
	StrategyVector = "vector"
	StrategyFuzzy  = "fuzzy"
)

// Fields the exact matcher scores on
const (
	FieldCompanyName = "company_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
)

// Policy selects which strategies a resolution runs
type Policy string

const (
	PolicyExact  Policy = "exact"
	PolicyVector Policy = "vector"
	PolicyFuzzy  Policy = "fuzzy"
	PolicyHybrid Policy = "hybrid"
)

// MatchStrategy generates scored candidates for an incoming customer
type MatchStrategy interface {
	Name() string
	Enabled() bool
	FindMatches(ctx context.Context, incoming *models.IncomingCustomer) ([]*models.MatchCandidate, error)
}

// CandidateReader is the customer lookup surface the strategies depend on
type CandidateReader interface {
	FindByExactCriteria(ctx context.Context, criteria map[string]string) ([]*models.Customer, error)
	FindByVectorSimilarity(ctx context.Context, embedding vector.Vector, minSimilarity float64, limit int) ([]*models.ScoredCustomer, error)
	FindByFuzzySimilarity(ctx context.Context, name string, minSimilarity float64, limit int) ([]*models.ScoredCustomer, error)
}

// ResultWriter persists a candidate set and completes the request atomically
type ResultWriter interface {
	SaveAndComplete(ctx context.Context, requestID int64, candidates []*models.MatchCandidate) error
}

// StatusWriter advances request processing status outside the persist path
type StatusWriter interface {
	MarkProcessing(ctx context.Context, requestID int64) error
	MarkFailed(ctx context.Context, requestID int64) error
}
