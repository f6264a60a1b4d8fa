package i

import (
	"context"
)

// UnlockFunc releases a previously acquired lock.
type UnlockFunc func() error

// Locker serializes named critical sections. The bracket engine acquires a
// per-tournament lock so round-completeness checks and next-round generation
// happen atomically under concurrent match completions.
type Locker interface {
	Lock(ctx context.Context, name string) (UnlockFunc, error)
}
