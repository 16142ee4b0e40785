package erp

import (
	"context"

	"github.com/menucloud/backend/internal/domain/tenant"
)

// Source reads catalog records from an external ERP database. Fetches
// return only active, published rows.
type Source interface {
	FetchCategories(ctx context.Context) ([]CategoryRecord, error)
	FetchProducts(ctx context.Context) ([]ProductRecord, error)
	FetchPrices(ctx context.Context) ([]PriceRecord, error)
}

// Session is an open, short-lived connection to a tenant's ERP database.
// Callers must Close on every exit path.
type Session interface {
	Source
	Close() error
}

// Opener establishes ERP sessions from tenant credentials
type Opener interface {
	// Open connects to the tenant's ERP database. Failures are returned
	// as *ConnectionError; no retry is attempted.
	Open(ctx context.Context, settings tenant.ERPSettings) (Session, error)

	// Test probes connectivity and reports a human-readable message
	Test(ctx context.Context, settings tenant.ERPSettings) (bool, string)
}
