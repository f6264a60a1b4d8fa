// Package lock provides named mutual exclusion backed by Redis. The bracket
// engine relies on it to serialize advancement per tournament across
// concurrent match completions.
package lock

import (
	"context"
	"time"

	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const lockExpiry = 30 * time.Second

// RedsyncLocker implements i.Locker with redsync distributed mutexes.
type RedsyncLocker struct {
	locker *redsync.Redsync
}

// NewRedsyncLocker creates a locker over the given Redis client.
func NewRedsyncLocker(client *redis.Client) (*RedsyncLocker, error) {
	pool := goredis.NewPool(client)
	return &RedsyncLocker{
		locker: redsync.New(pool),
	}, nil
}

// Lock acquires the named mutex, blocking until it is held or ctx expires.
func (l *RedsyncLocker) Lock(ctx context.Context, name string) (i.UnlockFunc, error) {
	mutex := l.locker.NewMutex(name+":lock", redsync.WithExpiry(lockExpiry))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}

	return func() error {
		_, err := mutex.UnlockContext(ctx)
		return err
	}, nil
}
