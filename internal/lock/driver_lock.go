// Package lock guards against two sessions working the same driver at
// once, which is the one concurrency hazard that can violate the
// one-open-trip-per-driver invariant (both sessions observing "no open
// trip" and both starting one). The lock is advisory and TTL-bounded so
// an abandoned session cannot wedge a driver forever.
package lock

import (
	"context"
	"sync"
	"time"
)

// DriverLock is acquired when a session selects a driver and released
// when the session completes or is reset.
type DriverLock interface {
	// Acquire returns true when the lock was obtained, false when another
	// session already holds it.
	Acquire(ctx context.Context, driverID string, ttl time.Duration) (bool, error)

	// Release frees the lock; releasing an unheld lock is a no-op.
	Release(ctx context.Context, driverID string) error
}

// MemoryLock is the single-host implementation.
type MemoryLock struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewMemoryLock creates a MemoryLock.
func NewMemoryLock() *MemoryLock {
	return &MemoryLock{expires: make(map[string]time.Time)}
}

// Acquire implements DriverLock.
func (l *MemoryLock) Acquire(_ context.Context, driverID string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.expires[driverID]; held && time.Now().Before(expiry) {
		return false, nil
	}
	l.expires[driverID] = time.Now().Add(ttl)
	return true, nil
}

// Release implements DriverLock.
func (l *MemoryLock) Release(_ context.Context, driverID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expires, driverID)
	return nil
}
