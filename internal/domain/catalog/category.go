package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menucloud/backend/internal/domain/shared"
)

// CategoryStatus represents the status of a category
type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
)

// Category represents a menu category in the tenant's catalog.
// Categories sourced from an external ERP carry the ERP code; categories
// created by hand in the platform have a nil code.
type Category struct {
	shared.TenantAggregateRoot
	Code      *string        `gorm:"type:varchar(50);uniqueIndex:idx_category_tenant_code,priority:2"`
	Name      string         `gorm:"type:varchar(100);not null"`
	ParentID  *uuid.UUID     `gorm:"type:uuid;index"`
	SortOrder int            `gorm:"not null;default:0"`
	Status    CategoryStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new manually-managed category without an ERP code
func NewCategory(tenantID uuid.UUID, name string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Status:              CategoryStatusActive,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// NewExternalCategory creates a category owned by an external ERP record.
// The code is the upsert key for subsequent reconciliation runs.
func NewExternalCategory(tenantID uuid.UUID, code, name string, sortOrder int) (*Category, error) {
	if err := validateCategoryCode(code); err != nil {
		return nil, err
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	normalized := strings.ToUpper(code)
	category := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                &normalized,
		Name:                name,
		SortOrder:           sortOrder,
		Status:              CategoryStatusActive,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// ApplyExternal overwrites the externally-sourced fields (name and sort
// order only) and reports whether anything changed. Reconciliation relies
// on the changed flag to stay idempotent across runs.
func (c *Category) ApplyExternal(name string, sortOrder int) (bool, error) {
	if err := validateCategoryName(name); err != nil {
		return false, err
	}

	if c.Name == name && c.SortOrder == sortOrder {
		return false, nil
	}

	c.Name = name
	c.SortOrder = sortOrder
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return true, nil
}

// Rename updates the category name
func (c *Category) Rename(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// SetParent links the category to a parent, or detaches it when nil.
// Reports whether the link actually changed.
func (c *Category) SetParent(parentID *uuid.UUID) bool {
	if equalUUIDPtr(c.ParentID, parentID) {
		return false
	}

	c.ParentID = parentID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return true
}

// HasCode returns true if the category carries an ERP code
func (c *Category) HasCode() bool {
	return c.Code != nil && *c.Code != ""
}

// CodeValue returns the ERP code or the empty string
func (c *Category) CodeValue() string {
	if c.Code == nil {
		return ""
	}
	return *c.Code
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsActive returns true if the category is active
func (c *Category) IsActive() bool {
	return c.Status == CategoryStatusActive
}

func equalUUIDPtr(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// validateCategoryCode validates the ERP category code
func validateCategoryCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Category code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Category code cannot exceed 50 characters")
	}
	return nil
}

// validateCategoryName validates the category name
func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
