package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clovererrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

type fakeStrategy struct {
	name    string
	enabled bool
	results []*models.MatchCandidate
	err     error
	calls   int
}

func (f *fakeStrategy) Name() string  { return f.name }
func (f *fakeStrategy) Enabled() bool { return f.enabled }

func (f *fakeStrategy) FindMatches(ctx context.Context, incoming *models.IncomingCustomer) ([]*models.MatchCandidate, error) {
	f.calls++
	return f.results, f.err
}

type fakeLease struct {
	released int
}

func (f *fakeLease) Release(ctx context.Context) error {
	f.released++
	return nil
}

type fakeLocker struct {
	lease *fakeLease
	err   error
	keys  []string
}

func (f *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	if f.lease == nil {
		f.lease = &fakeLease{}
	}
	return f.lease, nil
}

func newTestOrchestrator(strategies []MatchStrategy, results *fakeResultWriter, status *fakeStatusWriter, locker Locker) *Orchestrator {
	if results == nil {
		results = &fakeResultWriter{}
	}
	if status == nil {
		status = &fakeStatusWriter{}
	}
	processor := NewResultProcessor(results, status, noopLogger())
	return NewOrchestrator(strategies, processor, locker, DefaultConfig(), noopLogger())
}

func pendingIncoming() *models.IncomingCustomer {
	return &models.IncomingCustomer{
		RequestID:        1,
		CompanyName:      "Acme Corp",
		ProcessingStatus: models.ProcessingStatusPending,
	}
}

func TestOrchestrator_Resolve(t *testing.T) {
	t.Run("should reject a nil incoming customer", func(t *testing.T) {
		orchestrator := newTestOrchestrator(nil, nil, nil, nil)

		_, err := orchestrator.Resolve(context.Background(), nil, PolicyHybrid)
		require.Error(t, err)
		assert.True(t, clovererrors.IsValidationError(err))
	})

	t.Run("should reject a record with no match signal", func(t *testing.T) {
		orchestrator := newTestOrchestrator(nil, nil, nil, nil)

		incoming := &models.IncomingCustomer{RequestID: 1, ProcessingStatus: models.ProcessingStatusPending}

		_, err := orchestrator.Resolve(context.Background(), incoming, PolicyHybrid)
		require.Error(t, err)
		assert.True(t, clovererrors.IsValidationError(err))
	})

	t.Run("should refuse to re-resolve a failed request", func(t *testing.T) {
		orchestrator := newTestOrchestrator(nil, nil, nil, nil)

		incoming := pendingIncoming()
		incoming.ProcessingStatus = models.ProcessingStatusFailed

		_, err := orchestrator.Resolve(context.Background(), incoming, PolicyHybrid)
		require.Error(t, err)
		assert.True(t, clovererrors.IsConflictError(err))
	})

	t.Run("should reject an unknown policy", func(t *testing.T) {
		orchestrator := newTestOrchestrator(nil, nil, nil, nil)

		_, err := orchestrator.Resolve(context.Background(), pendingIncoming(), Policy("psychic"))
		require.Error(t, err)
		assert.True(t, clovererrors.IsValidationError(err))
	})

	t.Run("should run every enabled strategy under the hybrid policy", func(t *testing.T) {
		exact := &fakeStrategy{name: StrategyExact, enabled: true}
		vec := &fakeStrategy{name: StrategyVector, enabled: true}
		fuzzy := &fakeStrategy{name: StrategyFuzzy, enabled: false}
		orchestrator := newTestOrchestrator([]MatchStrategy{exact, vec, fuzzy}, nil, nil, nil)

		_, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyHybrid)
		require.NoError(t, err)

		assert.Equal(t, 1, exact.calls)
		assert.Equal(t, 1, vec.calls)
		assert.Equal(t, 0, fuzzy.calls, "disabled strategies must not run")
	})

	t.Run("should run only the named strategy for a single-strategy policy", func(t *testing.T) {
		exact := &fakeStrategy{name: StrategyExact, enabled: true}
		vec := &fakeStrategy{name: StrategyVector, enabled: true}
		orchestrator := newTestOrchestrator([]MatchStrategy{exact, vec}, nil, nil, nil)

		_, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyVector)
		require.NoError(t, err)

		assert.Equal(t, 0, exact.calls)
		assert.Equal(t, 1, vec.calls)
	})

	t.Run("should mark a pending request as processing", func(t *testing.T) {
		status := &fakeStatusWriter{}
		orchestrator := newTestOrchestrator(nil, nil, status, nil)

		_, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyHybrid)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, status.processingCalls)
	})

	t.Run("should not mark an already processing request again", func(t *testing.T) {
		status := &fakeStatusWriter{}
		orchestrator := newTestOrchestrator(nil, nil, status, nil)

		incoming := pendingIncoming()
		incoming.ProcessingStatus = models.ProcessingStatusProcessing

		_, err := orchestrator.Resolve(context.Background(), incoming, PolicyHybrid)
		require.NoError(t, err)
		assert.Empty(t, status.processingCalls)
	})

	t.Run("should let exact candidates win deduplication over vector", func(t *testing.T) {
		exact := &fakeStrategy{
			name:    StrategyExact,
			enabled: true,
			results: []*models.MatchCandidate{candidate(10, 0.9, StrategyExact)},
		}
		vec := &fakeStrategy{
			name:    StrategyVector,
			enabled: true,
			results: []*models.MatchCandidate{
				candidate(10, 0.95, StrategyVector),
				candidate(11, 0.8, StrategyVector),
			},
		}
		orchestrator := newTestOrchestrator([]MatchStrategy{exact, vec}, nil, nil, nil)

		out, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyHybrid)
		require.NoError(t, err)
		require.Len(t, out, 2)

		// customer 10 keeps the exact candidate even though vector scored higher
		assert.Equal(t, int64(10), out[0].MatchedCustomerID)
		assert.Equal(t, StrategyExact, out[0].MatchCriteria["strategy"])
	})

	t.Run("should isolate a failing strategy", func(t *testing.T) {
		exact := &fakeStrategy{name: StrategyExact, enabled: true, err: errors.New("query timeout")}
		vec := &fakeStrategy{
			name:    StrategyVector,
			enabled: true,
			results: []*models.MatchCandidate{candidate(11, 0.8, StrategyVector)},
		}
		orchestrator := newTestOrchestrator([]MatchStrategy{exact, vec}, nil, nil, nil)

		out, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyHybrid)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, int64(11), out[0].MatchedCustomerID)
	})

	t.Run("should acquire and release the resolution lease", func(t *testing.T) {
		locker := &fakeLocker{}
		orchestrator := newTestOrchestrator(nil, nil, nil, locker)

		_, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyHybrid)
		require.NoError(t, err)

		assert.Equal(t, []string{"resolve:1"}, locker.keys)
		require.NotNil(t, locker.lease)
		assert.Equal(t, 1, locker.lease.released)
	})

	t.Run("should return a conflict when the lease is held", func(t *testing.T) {
		locker := &fakeLocker{err: ErrLeaseHeld}
		orchestrator := newTestOrchestrator(nil, nil, nil, locker)

		_, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyHybrid)
		require.Error(t, err)
		assert.True(t, clovererrors.IsConflictError(err))
	})

	t.Run("should surface other lease failures as persistence errors", func(t *testing.T) {
		locker := &fakeLocker{err: errors.New("redis unavailable")}
		orchestrator := newTestOrchestrator(nil, nil, nil, locker)

		_, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyHybrid)
		require.Error(t, err)
		assert.True(t, clovererrors.IsPersistenceError(err))
	})

	t.Run("should report cancellation", func(t *testing.T) {
		blocking := &fakeStrategy{name: StrategyExact, enabled: true}
		orchestrator := newTestOrchestrator([]MatchStrategy{blocking}, nil, nil, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := orchestrator.Resolve(ctx, pendingIncoming(), PolicyHybrid)
		require.Error(t, err)
		assert.True(t, clovererrors.IsCancelledError(err))
	})

	t.Run("should complete with an empty set when no strategy finds anything", func(t *testing.T) {
		results := &fakeResultWriter{}
		exact := &fakeStrategy{name: StrategyExact, enabled: true}
		orchestrator := newTestOrchestrator([]MatchStrategy{exact}, results, nil, nil)

		out, err := orchestrator.Resolve(context.Background(), pendingIncoming(), PolicyHybrid)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Len(t, results.savedIDs, 1, "an empty resolution still completes the request")
	})
}

func TestOrchestrator_MarkFailed(t *testing.T) {
	t.Run("should delegate to the status writer", func(t *testing.T) {
		status := &fakeStatusWriter{}
		orchestrator := newTestOrchestrator(nil, nil, status, nil)

		require.NoError(t, orchestrator.MarkFailed(context.Background(), 7))
		assert.Equal(t, []int64{7}, status.failedCalls)
	})
}
