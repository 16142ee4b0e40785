package tenant

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/menucloud/backend/internal/domain/shared"
)

var validate = validator.New()

// ERPSettings holds a tenant's credentials for its external ERP database.
// Incomplete settings are a ConfigurationError surfaced before any
// connection attempt.
type ERPSettings struct {
	Server   string `gorm:"column:erp_server;type:varchar(255)" validate:"required,hostname|ip"`
	Database string `gorm:"column:erp_database;type:varchar(100)" validate:"required"`
	Username string `gorm:"column:erp_username;type:varchar(100)" validate:"required"`
	Password string `gorm:"column:erp_password;type:varchar(255)" validate:"required"`
	Port     int    `gorm:"column:erp_port" validate:"required,min=1,max=65535"`
	Enabled  bool   `gorm:"column:erp_enabled;not null;default:false"`
}

// Validate checks that the settings are complete enough to connect
func (s ERPSettings) Validate() error {
	if err := validate.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return shared.NewDomainError("ERP_SETTINGS_INCOMPLETE",
				fmt.Sprintf("ERP settings field '%s' failed on '%s'", errs[0].Field(), errs[0].Tag()))
		}
		return shared.NewDomainError("ERP_SETTINGS_INCOMPLETE", err.Error())
	}
	return nil
}

// Addr returns the host:port address of the ERP server
func (s ERPSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server, s.Port)
}

// Tenant represents a platform tenant and its sync state
type Tenant struct {
	shared.BaseAggregateRoot
	Name         string      `gorm:"type:varchar(100);not null"`
	Slug         string      `gorm:"type:varchar(100);not null;uniqueIndex"`
	ERP          ERPSettings `gorm:"embedded"`
	LastSyncDate *time.Time  `gorm:""`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant
func NewTenant(name, slug string) (*Tenant, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Tenant slug cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
	}, nil
}

// ConfigureERP sets the tenant's ERP connection settings
func (t *Tenant) ConfigureERP(settings ERPSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	t.ERP = settings
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SyncEnabled returns true if the tenant has complete, enabled ERP settings
func (t *Tenant) SyncEnabled() bool {
	return t.ERP.Enabled && t.ERP.Validate() == nil
}

// MarkSynced records a successful sync run
func (t *Tenant) MarkSynced(at time.Time) {
	t.LastSyncDate = &at
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
