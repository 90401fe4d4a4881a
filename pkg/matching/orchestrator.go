package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/appcontext"
	"github.com/Ramsey-B/clover/internal/tracing"
	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Orchestrator coordinates the matching strategies for a resolution policy
// and hands their combined output to the result processor
type Orchestrator struct {
	strategies []MatchStrategy
	processor  *ResultProcessor
	locker     Locker
	config     Config
	logger     ectologger.Logger
}

// NewOrchestrator creates an Orchestrator. Strategy order is significant: it
// decides which candidate survives deduplication when two strategies find the
// same customer.
func NewOrchestrator(strategies []MatchStrategy, processor *ResultProcessor, locker Locker, config Config, logger ectologger.Logger) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		processor:  processor,
		locker:     locker,
		config:     config,
		logger:     logger,
	}
}

// Resolve runs the strategies selected by policy against the incoming record
// and persists the ranked candidate set. A failing strategy contributes
// nothing; a failing persist fails the resolution. Re-resolving an already
// processed request succeeds and converges on the same candidate set.
func (o *Orchestrator) Resolve(ctx context.Context, incoming *models.IncomingCustomer, policy Policy) ([]*models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Orchestrator.Resolve")
	defer span.End()

	if incoming == nil {
		return nil, clovererrors.NewValidationError("incoming customer is required")
	}

	ctx = appcontext.SetRequestID(ctx, incoming.RequestID)
	log := o.logger.WithContext(ctx).WithFields(map[string]any{
		"request_id": incoming.RequestID,
		"policy":     string(policy),
	})

	if !incoming.HasMatchSignal() {
		return nil, clovererrors.NewValidationError("incoming customer has no usable match fields")
	}
	if incoming.ProcessingStatus == models.ProcessingStatusFailed {
		return nil, clovererrors.NewConflictError(fmt.Sprintf("request %d already failed", incoming.RequestID))
	}

	selected, err := o.selectStrategies(policy)
	if err != nil {
		return nil, err
	}

	if o.locker != nil {
		lease, err := o.locker.Acquire(ctx, fmt.Sprintf("resolve:%d", incoming.RequestID), o.config.LockTTL)
		if err != nil {
			if errors.Is(err, ErrLeaseHeld) {
				return nil, clovererrors.NewConflictError(fmt.Sprintf("request %d is already being resolved", incoming.RequestID))
			}
			return nil, clovererrors.NewPersistenceError("failed to acquire resolution lease", err)
		}
		defer lease.Release(ctx)
	}

	if o.config.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.ResolveTimeout)
		defer cancel()
	}

	if incoming.ProcessingStatus == models.ProcessingStatusPending {
		if err := o.processor.MarkProcessing(ctx, incoming.RequestID); err != nil {
			return nil, err
		}
	}

	// strategies run concurrently; contributions are collected by slot so the
	// combined order stays deterministic
	contributions := make([][]*models.MatchCandidate, len(selected))
	var wg sync.WaitGroup
	for i, strategy := range selected {
		wg.Add(1)
		go func(slot int, s MatchStrategy) {
			defer wg.Done()

			found, err := s.FindMatches(ctx, incoming)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).WithFields(map[string]any{
					"strategy": s.Name(),
				}).Warn("Matching strategy failed, continuing without its results")
				return
			}
			contributions[slot] = found
		}(i, strategy)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, clovererrors.NewCancelledError(ctx.Err())
	}

	var candidates []*models.MatchCandidate
	for _, contribution := range contributions {
		candidates = append(candidates, contribution...)
	}

	results, err := o.processor.Process(ctx, incoming.RequestID, candidates)
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]any{
		"candidate_count": len(results),
	}).Info("Resolution complete")

	return results, nil
}

// MarkFailed records a terminal failure for the request
func (o *Orchestrator) MarkFailed(ctx context.Context, requestID int64) error {
	return o.processor.MarkFailed(ctx, requestID)
}

// selectStrategies returns the enabled strategies the policy asks for. A
// policy naming a disabled strategy selects nothing; resolution then
// completes with an empty candidate set.
func (o *Orchestrator) selectStrategies(policy Policy) ([]MatchStrategy, error) {
	var selected []MatchStrategy
	switch policy {
	case PolicyHybrid:
		for _, s := range o.strategies {
			if s.Enabled() {
				selected = append(selected, s)
			}
		}
	case PolicyExact, PolicyVector, PolicyFuzzy:
		for _, s := range o.strategies {
			if s.Name() == string(policy) && s.Enabled() {
				selected = append(selected, s)
			}
		}
	default:
		return nil, clovererrors.NewValidationError(fmt.Sprintf("unknown matching policy '%s'", policy))
	}
	return selected, nil
}
