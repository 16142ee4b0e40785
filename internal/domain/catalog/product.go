package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menucloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a menu item in the tenant's catalog. Every product
// belongs to exactly one category. ImageURL, IsAvailable and IsSelected
// are platform-local fields that reconciliation never touches.
type Product struct {
	shared.TenantAggregateRoot
	Code            *string         `gorm:"type:varchar(50);uniqueIndex:idx_product_tenant_code,priority:2"`
	Name            string          `gorm:"type:varchar(200);not null"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CalorieCount    *int            `gorm:""`
	CookTimeMinutes *int            `gorm:""`
	ImageURL        string          `gorm:"type:varchar(500)"`
	IsAvailable     bool            `gorm:"not null;default:true"`
	IsSelected      bool            `gorm:"not null;default:false"`
	SortOrder       int             `gorm:"not null;default:0"`
	Status          ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new manually-managed product without an ERP code
func NewProduct(tenantID, categoryID uuid.UUID, name string, price decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product must reference a category")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		CategoryID:          categoryID,
		Price:               price,
		IsAvailable:         true,
		Status:              ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// NewExternalProduct creates a product owned by an external ERP record
func NewExternalProduct(
	tenantID, categoryID uuid.UUID,
	code, name string,
	price decimal.Decimal,
	calorieCount, cookTimeMinutes *int,
) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}

	product, err := NewProduct(tenantID, categoryID, name, price)
	if err != nil {
		return nil, err
	}

	normalized := strings.ToUpper(code)
	product.Code = &normalized
	product.CalorieCount = calorieCount
	product.CookTimeMinutes = cookTimeMinutes

	return product, nil
}

// ApplyExternal overwrites only the externally-sourced fields (name,
// category, price, calories, cook time) and reports whether anything
// changed. Local fields stay untouched.
func (p *Product) ApplyExternal(
	name string,
	categoryID uuid.UUID,
	price decimal.Decimal,
	calorieCount, cookTimeMinutes *int,
) (bool, error) {
	if err := validateProductName(name); err != nil {
		return false, err
	}
	if err := validatePrice(price); err != nil {
		return false, err
	}
	if categoryID == uuid.Nil {
		return false, shared.NewDomainError("INVALID_CATEGORY", "Product must reference a category")
	}

	if p.Name == name &&
		p.CategoryID == categoryID &&
		p.Price.Equal(price) &&
		equalIntPtr(p.CalorieCount, calorieCount) &&
		equalIntPtr(p.CookTimeMinutes, cookTimeMinutes) {
		return false, nil
	}

	p.Name = name
	p.CategoryID = categoryID
	p.Price = price
	p.CalorieCount = calorieCount
	p.CookTimeMinutes = cookTimeMinutes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return true, nil
}

// UpdatePrice updates only the price field. Used by the price refresh
// phase; reports whether the price actually changed.
func (p *Product) UpdatePrice(price decimal.Decimal) (bool, error) {
	if err := validatePrice(price); err != nil {
		return false, err
	}

	if p.Price.Equal(price) {
		return false, nil
	}

	old := p.Price
	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, old))

	return true, nil
}

// SetImage sets the platform-local image URL
func (p *Product) SetImage(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot exceed 500 characters")
	}

	p.ImageURL = url
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetAvailability toggles whether the product is shown on the menu
func (p *Product) SetAvailability(available bool) {
	p.IsAvailable = available
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetSelected toggles the platform-local selection flag
func (p *Product) SetSelected(selected bool) {
	p.IsSelected = selected
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// HasCode returns true if the product carries an ERP code
func (p *Product) HasCode() bool {
	return p.Code != nil && *p.Code != ""
}

// CodeValue returns the ERP code or the empty string
func (p *Product) CodeValue() string {
	if p.Code == nil {
		return ""
	}
	return *p.Code
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// validateProductCode validates the ERP product code
func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

// validatePrice validates a product price
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
