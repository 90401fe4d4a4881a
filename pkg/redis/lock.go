package redis

import (
	"context"
	"errors"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotAcquired is returned when another holder owns the key
	ErrLockNotAcquired = errors.New("lock not acquired")
	// ErrLockNotHeld is returned when releasing a lock that expired or was
	// taken over
	ErrLockNotHeld = errors.New("lock not held")
)

// release only deletes the key while the caller still owns it, so a lease
// that expired and was re-acquired by another resolver is never clobbered
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// lockCommander is the slice of the go-redis client the locker needs
type lockCommander interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// Lock is a held resolution lease. The orchestrator takes one per request so
// only a single worker resolves a request at a time; the TTL bounds how long
// a crashed worker can keep the request fenced.
type Lock struct {
	rdb    lockCommander
	logger ectologger.Logger
	key    string
	token  string
}

// Locker hands out at-most-one lock per key
type Locker struct {
	rdb       lockCommander
	logger    ectologger.Logger
	keyPrefix string
}

// NewLocker creates a new Locker
func NewLocker(client *Client, keyPrefix string) *Locker {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &Locker{
		rdb:       client.rdb,
		logger:    client.logger,
		keyPrefix: keyPrefix,
	}
}

// Acquire attempts to take the lock; contention is reported as
// ErrLockNotAcquired rather than blocking
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	lockKey := l.keyPrefix + key
	token := uuid.New().String()

	ok, err := l.rdb.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrLockNotAcquired
	}

	l.logger.WithContext(ctx).Debugf("Acquired lock: %s", key)

	return &Lock{
		rdb:    l.rdb,
		logger: l.logger,
		key:    lockKey,
		token:  token,
	}, nil
}

// Release releases the lock if this holder still owns it
func (lock *Lock) Release(ctx context.Context) error {
	result, err := releaseScript.Run(ctx, lock.rdb, []string{lock.key}, lock.token).Int64()
	if err != nil {
		return err
	}

	if result == 0 {
		return ErrLockNotHeld
	}

	lock.logger.WithContext(ctx).Debugf("Released lock: %s", lock.key)
	return nil
}
