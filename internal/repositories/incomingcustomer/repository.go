package incomingcustomer

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/internal/database"
	"github.com/Ramsey-B/clover/internal/tracing"
	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

var columns = []string{
	"request_id", "company_name", "contact_name", "email", "phone",
	"address_line1", "address_line2", "city", "state_province", "postal_code",
	"country", "industry", "annual_revenue", "employee_count", "website",
	"description", "request_date", "company_name_embedding",
	"full_profile_embedding", "processing_status", "processed_date",
}

// Repository manages incoming customer requests and their processing status
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Get loads an incoming customer request by id
func (r *Repository) Get(ctx context.Context, requestID int64) (*models.IncomingCustomer, error) {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("incoming_customers")
	sb.Where(sb.Equal("request_id", requestID))

	query, args := sb.Build()

	var incoming models.IncomingCustomer
	err := r.db.GetContext(ctx, &incoming, query, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, clovererrors.NewNotFoundError(fmt.Sprintf("incoming customer %d not found", requestID))
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"request_id": requestID,
		}).Error("Failed to load incoming customer")
		return nil, clovererrors.NewPersistenceError("failed to load incoming customer", err)
	}

	return &incoming, nil
}

// MarkProcessing moves a pending request to processing. Losing the race to
// another worker is not an error; the caller holds the resolution lease.
func (r *Repository) MarkProcessing(ctx context.Context, requestID int64) error {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.MarkProcessing")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("incoming_customers")
	sb.Set(sb.Assign("processing_status", models.ProcessingStatusProcessing))
	sb.Where(
		sb.Equal("request_id", requestID),
		sb.Equal("processing_status", models.ProcessingStatusPending),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"request_id": requestID,
		}).Error("Failed to mark incoming customer processing")
		return clovererrors.NewPersistenceError("failed to mark request processing", err)
	}

	return nil
}

// MarkFailed moves a pending or processing request to failed. Requests that
// already reached processed stay processed.
func (r *Repository) MarkFailed(ctx context.Context, requestID int64) error {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.MarkFailed")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("incoming_customers")
	sb.Set(sb.Assign("processing_status", models.ProcessingStatusFailed))
	sb.Where(
		sb.Equal("request_id", requestID),
		sb.In("processing_status", models.ProcessingStatusPending, models.ProcessingStatusProcessing),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"request_id": requestID,
		}).Error("Failed to mark incoming customer failed")
		return clovererrors.NewPersistenceError("failed to mark request failed", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return clovererrors.NewPersistenceError("failed to read rows affected", err)
	}
	if rows == 0 {
		status, statusErr := r.getStatus(ctx, requestID)
		if statusErr != nil {
			return statusErr
		}
		if status == models.ProcessingStatusProcessed {
			return clovererrors.NewConflictError(fmt.Sprintf("request %d is already processed", requestID))
		}
		// already failed; nothing to do
	}

	return nil
}

// ListPending returns the oldest pending requests, up to limit
func (r *Repository) ListPending(ctx context.Context, limit int) ([]*models.IncomingCustomer, error) {
	ctx, span := tracing.StartSpan(ctx, "incomingcustomer.Repository.ListPending")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("incoming_customers")
	sb.Where(sb.Equal("processing_status", models.ProcessingStatusPending))
	sb.OrderBy("request_date ASC")
	sb.Limit(limit)

	query, args := sb.Build()

	var pending []*models.IncomingCustomer
	if err := r.db.SelectContext(ctx, &pending, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list pending incoming customers")
		return nil, clovererrors.NewPersistenceError("failed to list pending requests", err)
	}

	return pending, nil
}

func (r *Repository) getStatus(ctx context.Context, requestID int64) (string, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("processing_status")
	sb.From("incoming_customers")
	sb.Where(sb.Equal("request_id", requestID))

	query, args := sb.Build()

	var status string
	err := r.db.GetContext(ctx, &status, query, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return "", clovererrors.NewNotFoundError(fmt.Sprintf("incoming customer %d not found", requestID))
		}
		return "", clovererrors.NewPersistenceError("failed to read request status", err)
	}
	return status, nil
}
