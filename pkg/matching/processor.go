package matching

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/models"
)

// ResultProcessor finalizes a resolution: dedupes and ranks the combined
// strategy output, persists it, and advances the request status
type ResultProcessor struct {
	results ResultWriter
	status  StatusWriter
	logger  ectologger.Logger
}

func NewResultProcessor(results ResultWriter, status StatusWriter, logger ectologger.Logger) *ResultProcessor {
	return &ResultProcessor{
		results: results,
		status:  status,
		logger:  logger,
	}
}

// Process dedupes candidates by matched customer (first seen wins, so
// strategy contribution order decides ties), sorts best-first, and stores the
// set while marking the request processed in one transaction. An empty set
// still completes the request.
func (p *ResultProcessor) Process(ctx context.Context, requestID int64, candidates []*models.MatchCandidate) ([]*models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.ResultProcessor.Process")
	defer span.End()

	deduped := dedupeByCustomer(candidates)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].ConfidenceLevel > deduped[j].ConfidenceLevel
	})

	for _, candidate := range deduped {
		candidate.IncomingCustomerID = requestID
	}

	if err := p.results.SaveAndComplete(ctx, requestID, deduped); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"request_id": requestID,
		}).Error("Failed to store match results")
		return nil, err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"request_id":      requestID,
		"raw_count":       len(candidates),
		"candidate_count": len(deduped),
	}).Info("Match results stored")

	return deduped, nil
}

// MarkProcessing advances a pending request to processing
func (p *ResultProcessor) MarkProcessing(ctx context.Context, requestID int64) error {
	return p.status.MarkProcessing(ctx, requestID)
}

// MarkFailed advances a request to failed after an unrecoverable error
func (p *ResultProcessor) MarkFailed(ctx context.Context, requestID int64) error {
	ctx, span := tracing.StartSpan(ctx, "matching.ResultProcessor.MarkFailed")
	defer span.End()

	return p.status.MarkFailed(ctx, requestID)
}

func dedupeByCustomer(candidates []*models.MatchCandidate) []*models.MatchCandidate {
	seen := make(map[int64]struct{}, len(candidates))
	deduped := make([]*models.MatchCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		if _, ok := seen[candidate.MatchedCustomerID]; ok {
			continue
		}
		seen[candidate.MatchedCustomerID] = struct{}{}
		deduped = append(deduped, candidate)
	}

	return deduped
}
