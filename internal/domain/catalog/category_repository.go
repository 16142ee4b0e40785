package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the persistence interface for categories
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByCode finds a category by its ERP code within a tenant.
	// Returns shared.ErrNotFound when no category carries the code.
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Category, error)

	// FindAllForTenant returns all categories of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Category, error)

	// ExistsByCode checks whether a category with the code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error
}
