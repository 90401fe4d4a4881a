package matchresult

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/internal/database"
	"github.com/Ramsey-B/clover/internal/tracing"
	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Repository persists match candidates for incoming customer requests
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// SaveAndComplete stores the candidate set and marks the request processed in
// a single transaction. Candidates are upserted on
// (incoming_customer_id, matched_customer_id) so a re-run converges on the
// same rows instead of duplicating them. An empty candidate set still
// completes the request.
func (r *Repository) SaveAndComplete(ctx context.Context, requestID int64, candidates []*models.MatchCandidate) error {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.SaveAndComplete")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"request_id":      requestID,
		"candidate_count": len(candidates),
	})

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return clovererrors.NewPersistenceError("failed to start transaction", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	if len(candidates) > 0 {
		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("matching_results")
		sb.Cols("match_id", "incoming_customer_id", "matched_customer_id",
			"similarity_score", "match_type", "match_criteria",
			"confidence_level", "created_date")
		for _, candidate := range candidates {
			if candidate.MatchID == "" {
				candidate.MatchID = uuid.New().String()
			}
			if candidate.CreatedDate.IsZero() {
				candidate.CreatedDate = now
			}
			sb.Values(candidate.MatchID, requestID, candidate.MatchedCustomerID,
				candidate.SimilarityScore, candidate.MatchType, candidate.MatchCriteria,
				candidate.ConfidenceLevel, candidate.CreatedDate)
		}

		query, args := sb.Build()
		query += ` ON CONFLICT (incoming_customer_id, matched_customer_id) DO UPDATE SET
			similarity_score = excluded.similarity_score,
			match_type = excluded.match_type,
			match_criteria = excluded.match_criteria,
			confidence_level = excluded.confidence_level`

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).Error("Failed to insert match candidates")
			return clovererrors.NewPersistenceError("failed to insert match candidates", err)
		}
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("incoming_customers")
	ub.Set(
		ub.Assign("processing_status", models.ProcessingStatusProcessed),
		ub.Assign("processed_date", now),
	)
	ub.Where(
		ub.Equal("request_id", requestID),
		ub.In("processing_status", models.ProcessingStatusPending, models.ProcessingStatusProcessing),
	)

	query, args := ub.Build()
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to mark request processed")
		return clovererrors.NewPersistenceError("failed to mark request processed", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return clovererrors.NewPersistenceError("failed to read rows affected", err)
	}
	if rows == 0 {
		// a re-run of an already processed request is a success; a failed
		// request must not silently become processed
		var status string
		statusQuery := "SELECT processing_status FROM incoming_customers WHERE request_id = $1"
		if err := tx.GetContext(ctx, &status, statusQuery, requestID); err != nil {
			if err.Error() == "sql: no rows in result set" {
				return clovererrors.NewNotFoundError(fmt.Sprintf("incoming customer %d not found", requestID))
			}
			return clovererrors.NewPersistenceError("failed to read request status", err)
		}
		if status != models.ProcessingStatusProcessed {
			return clovererrors.NewConflictError(fmt.Sprintf("request %d is %s and cannot be completed", requestID, status))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("Failed to commit match results")
		return clovererrors.NewPersistenceError("failed to commit match results", err)
	}

	log.Debug("Stored match candidates")
	return nil
}

// ListByRequest returns the stored candidates for a request ordered by
// confidence, best first
func (r *Repository) ListByRequest(ctx context.Context, requestID int64) ([]*models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.ListByRequest")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("match_id", "incoming_customer_id", "matched_customer_id",
		"similarity_score", "match_type", "match_criteria", "confidence_level",
		"created_date", "reviewed", "reviewer_notes")
	sb.From("matching_results")
	sb.Where(sb.Equal("incoming_customer_id", requestID))
	sb.OrderBy("confidence_level DESC")

	query, args := sb.Build()

	var candidates []*models.MatchCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"request_id": requestID,
		}).Error("Failed to list match candidates")
		return nil, clovererrors.NewPersistenceError("failed to list match candidates", err)
	}

	return candidates, nil
}
