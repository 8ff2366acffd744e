// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role names recognised across the back office.
const (
	RoleSuperAdmin  = "SUPERADMIN"
	RoleAgencyAdmin = "AGENCY_ADMIN"
	RoleAgencyUser  = "AGENCY_USER"
	RoleSeller      = "SELLER"
	RoleOperation   = "OPERATION"
	RoleAccountant  = "ACCOUNTANT"
)

// KnownRoles lists every assignable role.
var KnownRoles = []string{
	RoleSuperAdmin,
	RoleAgencyAdmin,
	RoleAgencyUser,
	RoleSeller,
	RoleOperation,
	RoleAccountant,
}

// IsKnownRole reports whether name is an assignable role.
func IsKnownRole(name string) bool {
	for _, role := range KnownRoles {
		if role == name {
			return true
		}
	}
	return false
}

// User represents a back office account.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email        string            `gorm:"type:text;not null;uniqueIndex" json:"email"`
	DisplayName  string            `gorm:"column:display_name;type:text" json:"display_name"`
	PasswordHash string            `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         string            `gorm:"type:text;not null" json:"role"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Identity is the resolved caller for a request.
type Identity struct {
	UserID    snowflake.ID
	Email     string
	Role      string
	TenantIDs []snowflake.ID
}

// IsSuper reports whether the identity carries the super role.
func (i Identity) IsSuper() bool { return i.Role == RoleSuperAdmin }
