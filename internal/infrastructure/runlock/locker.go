// Package runlock serializes sync runs per tenant. A run holds the
// tenant's lock from the first phase to the last; a second run started
// while the lock is held is rejected, never queued.
package runlock

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAlreadyRunning is returned when a sync run is already in progress
// for the tenant.
var ErrAlreadyRunning = errors.New("sync already running for tenant")

// Locker acquires per-tenant run locks
type Locker interface {
	// Acquire takes the tenant's run lock. On success it returns a
	// release function that must be called exactly once. When the lock
	// is held by another run it returns ErrAlreadyRunning.
	Acquire(ctx context.Context, tenantID uuid.UUID) (release func(), err error)
}
