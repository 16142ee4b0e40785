package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for tenants
type Repository interface {
	// FindByID finds a tenant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindBySlug finds a tenant by its slug
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error

	// MarkSynced persists the tenant's last successful sync timestamp
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error
}
