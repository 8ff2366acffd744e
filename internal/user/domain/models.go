package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserPermission is an explicit grant given to one user on top of whatever
// their role already implies.
type UserPermission struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID `gorm:"column:user_id;not null;index:idx_user_permissions_user_permission,unique" json:"user_id"`
	Permission string       `gorm:"type:text;not null;index:idx_user_permissions_user_permission,unique" json:"permission"`
	IsActive   bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	GrantedBy  snowflake.ID `gorm:"column:granted_by" json:"granted_by"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (UserPermission) TableName() string { return "user_permissions" }
