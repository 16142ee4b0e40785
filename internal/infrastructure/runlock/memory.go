package runlock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryLocker is an in-process Locker for single-instance deployments
type MemoryLocker struct {
	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{active: make(map[uuid.UUID]struct{})}
}

// Acquire takes the tenant's run lock without blocking
func (l *MemoryLocker) Acquire(_ context.Context, tenantID uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.active[tenantID]; held {
		return nil, ErrAlreadyRunning
	}
	l.active[tenantID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.active, tenantID)
			l.mu.Unlock()
		})
	}
	return release, nil
}

var _ Locker = (*MemoryLocker)(nil)
