package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the persistence interface for products
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its ERP code within a tenant.
	// Returns shared.ErrNotFound when no product carries the code.
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)

	// FindAllForTenant returns all products of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Product, error)

	// ListNames returns the names of all products of a tenant. The
	// importer loads this snapshot once per run for duplicate detection.
	ListNames(ctx context.Context, tenantID uuid.UUID) ([]string, error)

	// ExistsByCode checks whether a product with the code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}
