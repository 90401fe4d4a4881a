package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/internal/database"
	"github.com/Ramsey-B/clover/internal/tracing"
	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/vector"
)

// candidate queries skip the embedding columns; hauling 1536-dim vectors per
// candidate is wasted IO
var candidateColumns = []string{
	"customer_id", "company_name", "contact_name", "email", "phone",
	"address_line1", "address_line2", "city", "state_province", "postal_code",
	"country", "industry", "annual_revenue", "employee_count", "website",
	"description", "created_date", "updated_date",
}

// Repository provides candidate lookups against the canonical customers table
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// FindByExactCriteria returns customers matching ANY of the provided
// normalized criteria. Supported keys: company_name, email, phone. Values must
// already be normalized; the query normalizes the stored columns the same way.
func (r *Repository) FindByExactCriteria(ctx context.Context, criteria map[string]string) ([]*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.FindByExactCriteria")
	defer span.End()

	if len(criteria) == 0 {
		return []*models.Customer{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(candidateColumns...)
	sb.From("customers")

	var conds []string
	if v, ok := criteria["company_name"]; ok && v != "" {
		conds = append(conds, sb.Equal("lower(btrim(company_name))", v))
	}
	if v, ok := criteria["email"]; ok && v != "" {
		conds = append(conds, sb.Equal("lower(btrim(email))", v))
	}
	if v, ok := criteria["phone"]; ok && v != "" {
		conds = append(conds, sb.Equal("regexp_replace(phone, '[^0-9]', '', 'g')", v))
	}
	if len(conds) == 0 {
		return []*models.Customer{}, nil
	}
	sb.Where(sb.Or(conds...))

	query, args := sb.Build()

	var customers []*models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"criteria_count": len(criteria),
		}).Error("Failed to query customers by exact criteria")
		return nil, clovererrors.NewPersistenceError("failed to query customers by exact criteria", err)
	}

	return customers, nil
}

// FindByVectorSimilarity returns the customers whose full profile embedding is
// closest to the query embedding by cosine distance. similarity = 1 - distance;
// rows at or below minSimilarity are excluded.
func (r *Repository) FindByVectorSimilarity(ctx context.Context, embedding vector.Vector, minSimilarity float64, limit int) ([]*models.ScoredCustomer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.FindByVectorSimilarity")
	defer span.End()

	if len(embedding) == 0 {
		return []*models.ScoredCustomer{}, nil
	}

	query := fmt.Sprintf(`
		WITH distance_calc AS (
			SELECT %s,
				full_profile_embedding <=> $1::vector(%d) AS distance
			FROM customers
			WHERE full_profile_embedding IS NOT NULL
		)
		SELECT %s, (1 - distance) AS similarity_score
		FROM distance_calc
		WHERE (1 - distance) > $2
		ORDER BY distance
		LIMIT $3`,
		strings.Join(candidateColumns, ", "), len(embedding),
		strings.Join(candidateColumns, ", "))

	var customers []*models.ScoredCustomer
	if err := r.db.SelectContext(ctx, &customers, query, embedding, minSimilarity, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"min_similarity": minSimilarity,
			"limit":          limit,
		}).Error("Failed to query customers by vector similarity")
		return nil, clovererrors.NewPersistenceError("failed to query customers by vector similarity", err)
	}

	return customers, nil
}

// FindByFuzzySimilarity returns a candidate pool of customers whose company or
// contact name is trigram-similar to the query name. The similarity_score on
// each row is the trigram score; callers re-score with their own algorithm.
func (r *Repository) FindByFuzzySimilarity(ctx context.Context, name string, minSimilarity float64, limit int) ([]*models.ScoredCustomer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.FindByFuzzySimilarity")
	defer span.End()

	if name == "" {
		return []*models.ScoredCustomer{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s,
			GREATEST(
				similarity(lower(company_name), $1),
				similarity(lower(coalesce(contact_name, '')), $1)
			) AS similarity_score
		FROM customers
		WHERE similarity(lower(company_name), $1) >= $2
			OR similarity(lower(coalesce(contact_name, '')), $1) >= $2
		ORDER BY similarity_score DESC
		LIMIT $3`,
		strings.Join(candidateColumns, ", "))

	var customers []*models.ScoredCustomer
	if err := r.db.SelectContext(ctx, &customers, query, strings.ToLower(name), minSimilarity, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"min_similarity": minSimilarity,
			"limit":          limit,
		}).Error("Failed to query customers by fuzzy similarity")
		return nil, clovererrors.NewPersistenceError("failed to query customers by fuzzy similarity", err)
	}

	return customers, nil
}
