package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Module names shipped with the platform.
const (
	NameTransfer      = "transfer"
	NameTour          = "tour"
	NameAccommodation = "accommodation"
	NameInvoice       = "invoice"
	NameWebsite       = "website"
)

// KnownNames lists every module the platform defines.
var KnownNames = []string{
	NameTransfer,
	NameTour,
	NameAccommodation,
	NameInvoice,
	NameWebsite,
}

// Module is a named product area that can be switched per tenant.
type Module struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Module) TableName() string { return "modules" }

// TenantModule switches a module on or off for one tenant.
type TenantModule struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"column:tenant_id;not null;index:idx_tenant_modules_tenant_module,unique" json:"tenant_id"`
	ModuleID  snowflake.ID `gorm:"column:module_id;not null;index:idx_tenant_modules_tenant_module,unique" json:"module_id"`
	IsEnabled bool         `gorm:"column:is_enabled;not null;default:false" json:"is_enabled"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TenantModule) TableName() string { return "tenant_modules" }

// TenantModuleFlag is the per-module view returned to clients.
type TenantModuleFlag struct {
	Name      string `json:"name"`
	IsEnabled bool   `json:"is_enabled"`
}
