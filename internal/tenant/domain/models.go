package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Tenant is an agency operating on the platform.
type Tenant struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Slug      string            `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Locale    string            `gorm:"type:text" json:"locale,omitempty"`
	Branding  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"branding,omitempty"`
	IsActive  bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// TenantUser links a user to a tenant with a role inside that tenant.
type TenantUser struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"column:tenant_id;not null;index:idx_tenant_users_tenant_user,unique" json:"tenant_id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index:idx_tenant_users_tenant_user,unique" json:"user_id"`
	Role      string       `gorm:"type:text;not null" json:"role"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TenantUser) TableName() string { return "tenant_users" }
