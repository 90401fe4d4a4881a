package matching

import (
	"context"
	"errors"
	"time"

	"github.com/Ramsey-B/clover/pkg/redis"
)

// ErrLeaseHeld reports that another resolver currently owns the request
var ErrLeaseHeld = errors.New("resolution lease held")

// Lease is a held resolution lease
type Lease interface {
	Release(ctx context.Context) error
}

// Locker grants at-most-one resolution lease per key
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// redisLocker adapts the redis Locker to the matching Locker port
type redisLocker struct {
	locker *redis.Locker
}

// NewRedisLocker wraps a redis Locker for use by the orchestrator
func NewRedisLocker(locker *redis.Locker) Locker {
	return &redisLocker{locker: locker}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	lock, err := l.locker.Acquire(ctx, key, ttl)
	if err != nil {
		if errors.Is(err, redis.ErrLockNotAcquired) {
			return nil, ErrLeaseHeld
		}
		return nil, err
	}
	return lock, nil
}
