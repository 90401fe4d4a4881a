package processor

import (
	"context"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/appcontext"
	"github.com/Ramsey-B/clover/internal/tracing"
	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Resolver runs a resolution for an incoming customer record
type Resolver interface {
	Resolve(ctx context.Context, incoming *models.IncomingCustomer, policy matching.Policy) ([]*models.MatchCandidate, error)
	MarkFailed(ctx context.Context, requestID int64) error
}

// RequestReader loads incoming customer requests
type RequestReader interface {
	Get(ctx context.Context, requestID int64) (*models.IncomingCustomer, error)
	ListPending(ctx context.Context, limit int) ([]*models.IncomingCustomer, error)
}

// EventEmitter announces resolution outcomes
type EventEmitter interface {
	EmitMatchCompleted(ctx context.Context, requestID int64, candidates []*models.MatchCandidate) error
	EmitMatchFailed(ctx context.Context, requestID int64, reason string) error
}

// Config holds worker tunables
type Config struct {
	MaxAttempts    int
	RetryBackoff   time.Duration
	SweepEnabled   bool
	SweepInterval  time.Duration
	SweepBatchSize int
}

// DefaultConfig returns the default worker configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		RetryBackoff:   time.Second,
		SweepEnabled:   true,
		SweepInterval:  time.Minute,
		SweepBatchSize: 50,
	}
}

// Processor drives resolutions from the intake topic and the pending backlog
type Processor struct {
	requests RequestReader
	resolver Resolver
	emitter  EventEmitter
	config   Config
	logger   ectologger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(requests RequestReader, resolver Resolver, emitter EventEmitter, config Config, logger ectologger.Logger) *Processor {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	return &Processor{
		requests: requests,
		resolver: resolver,
		emitter:  emitter,
		config:   config,
		logger:   logger,
	}
}

// HandleMessage processes one intake message. A nil return commits the
// message; returning an error leaves it for redelivery.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	if msg.CustomerMessage == nil {
		p.logger.WithContext(ctx).Error("Message missing customer payload")
		return nil
	}

	ctx = appcontext.SetSource(ctx, msg.Topic)
	return p.ProcessRequest(ctx, msg.CustomerMessage.RequestID)
}

// ProcessRequest resolves a single request with retries. Terminal failures
// mark the request failed rather than erroring, so intake can move on.
func (p *Processor) ProcessRequest(ctx context.Context, requestID int64) error {
	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"request_id": requestID,
	})

	incoming, err := p.requests.Get(ctx, requestID)
	if err != nil {
		if clovererrors.IsNotFoundError(err) {
			// redelivery will never find it either
			log.WithError(err).Warn("Incoming customer not found, dropping message")
			return nil
		}
		return err
	}

	switch incoming.ProcessingStatus {
	case models.ProcessingStatusProcessed:
		log.Debug("Request already processed")
		return nil
	case models.ProcessingStatusFailed:
		log.Debug("Request already failed")
		return nil
	}

	var candidates []*models.MatchCandidate
	for attempt := 1; ; attempt++ {
		candidates, err = p.resolver.Resolve(ctx, incoming, matching.PolicyHybrid)
		if err == nil {
			break
		}

		if clovererrors.IsConflictError(err) {
			log.Debug("Request is being resolved elsewhere")
			return nil
		}
		if clovererrors.IsValidationError(err) {
			// retrying cannot fix the record
			p.failRequest(ctx, requestID, err.Error())
			return nil
		}
		if clovererrors.IsCancelledError(err) && ctx.Err() != nil {
			return err
		}

		if attempt >= p.config.MaxAttempts {
			log.WithError(err).WithFields(map[string]any{
				"attempts": attempt,
			}).Error("Resolution failed after retries")
			p.failRequest(ctx, requestID, err.Error())
			return nil
		}

		log.WithError(err).WithFields(map[string]any{
			"attempt": attempt,
		}).Warn("Resolution failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.config.RetryBackoff):
		}
	}

	if err := p.emitter.EmitMatchCompleted(ctx, requestID, candidates); err != nil {
		// the request is already processed; do not fail the message over an event
		log.WithError(err).Error("Failed to emit completion event")
	}

	return nil
}

func (p *Processor) failRequest(ctx context.Context, requestID int64, reason string) {
	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"request_id": requestID,
	})

	if err := p.resolver.MarkFailed(ctx, requestID); err != nil {
		log.WithError(err).Error("Failed to mark request failed")
	}
	if err := p.emitter.EmitMatchFailed(ctx, requestID, reason); err != nil {
		log.WithError(err).Error("Failed to emit failure event")
	}
}

// StartSweeper periodically resolves requests stuck in pending, catching
// records that never got an intake message or whose message was lost
func (p *Processor) StartSweeper(ctx context.Context) {
	if !p.config.SweepEnabled {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.sweepLoop(ctx)

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"interval": p.config.SweepInterval.String(),
	}).Info("Backlog sweeper started")
}

// Stop stops the sweeper and waits for the current sweep to finish
func (p *Processor) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Processor) sweepLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep resolves one batch of pending requests
func (p *Processor) Sweep(ctx context.Context) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.Sweep")
	defer span.End()

	ctx = appcontext.SetSource(ctx, "backlog-sweep")

	pending, err := p.requests.ListPending(ctx, p.config.SweepBatchSize)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to list pending requests")
		return
	}
	if len(pending) == 0 {
		return
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"pending_count": len(pending),
	}).Info("Sweeping pending requests")

	for _, incoming := range pending {
		if ctx.Err() != nil {
			return
		}
		if err := p.ProcessRequest(ctx, incoming.RequestID); err != nil {
			p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"request_id": incoming.RequestID,
			}).Error("Failed to sweep request")
		}
	}
}
