package i

import "context"

// Locker hands out named mutual exclusion locks.
type Locker interface {
	// Lock blocks until key is held and returns the function releasing it.
	Lock(ctx context.Context, key string) (unlock func() error, err error)
}
