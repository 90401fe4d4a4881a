package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Event types emitted on the output topic
const (
	EventMatchCompleted = "match.completed"
	EventMatchFailed    = "match.failed"
)

// Emitter publishes match lifecycle events
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitMatchCompleted announces a successful resolution and its candidate set
func (e *Emitter) EmitMatchCompleted(ctx context.Context, requestID int64, candidates []*models.MatchCandidate) error {
	event := &kafka.MatchEvent{
		EventType:      EventMatchCompleted,
		RequestID:      requestID,
		CandidateCount: len(candidates),
	}
	if len(candidates) > 0 {
		event.TopConfidence = candidates[0].ConfidenceLevel
	}

	return e.producer.PublishMatchEvent(ctx, event)
}

// EmitMatchFailed announces a terminally failed resolution
func (e *Emitter) EmitMatchFailed(ctx context.Context, requestID int64, reason string) error {
	event := &kafka.MatchEvent{
		EventType: EventMatchFailed,
		RequestID: requestID,
		Reason:    reason,
	}

	return e.producer.PublishMatchEvent(ctx, event)
}
