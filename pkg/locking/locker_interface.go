package locking

import (
	"context"
	"errors"
	"time"
)

// ErrLockAlreadyHeld is returned by Acquire with tryOnlyOnce when the lock is taken
var ErrLockAlreadyHeld = errors.New("lock is already held")

// LockerInterface represents a Locker
type LockerInterface interface {
	Acquire(ctx context.Context, key string, ttl time.Duration, tryOnlyOnce bool) (LockInterface, error)
}

// LockInterface represents a Lock
type LockInterface interface {
	Key() string
	Release(ctx context.Context) error
}
