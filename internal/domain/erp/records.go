// Package erp models the tenant's external ERP inventory as read-only
// record snapshots. Records are fetched per sync run and never persisted
// as-is; reconciliation converges the internal catalog toward them.
package erp

import (
	"github.com/shopspring/decimal"
)

// CategoryRecord is a category row from the external ERP schema
type CategoryRecord struct {
	ExternalID  int64
	Code        string
	Name        string
	ParentCode  *string
	IsActive    bool
	IsPublished bool
}

// ProductRecord is a product row from the external ERP schema, joined
// with its price sub-table. A product without a price row carries zero.
type ProductRecord struct {
	ExternalID   int64
	Code         string
	Name         string
	CategoryCode string
	Price        decimal.Decimal
	CalorieCount *int
	CookTime     *int
	IsActive     bool
	IsPublished  bool
}

// PriceRecord is a price row keyed by product code, used by the
// price-refresh phase
type PriceRecord struct {
	ProductCode string
	Price       decimal.Decimal
}
