// Package lock provides the named locks that keep two instances from proving the same
// maze at once.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "lock:"

var _ i.Locker = &RedisLocker{}

// RedisLocker hands out redsync mutexes. Locks expire after ttl so a crashed holder
// cannot block a seed forever.
type RedisLocker struct {
	rs  *redsync.Redsync
	ttl time.Duration
}

// NewRedisLocker creates a locker on client. ttl should exceed the proving timeout.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		rs:  redsync.New(goredis.NewPool(client)),
		ttl: ttl,
	}
}

// Lock blocks until key is held or ctx ends.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func() error, error) {
	mutex := l.rs.NewMutex(lockKeyPrefix+key,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(64),
		redsync.WithRetryDelay(250*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}

	return func() error {
		if _, err := mutex.Unlock(); err != nil {
			return fmt.Errorf("unlock %s: %w", key, err)
		}
		return nil
	}, nil
}
