package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog records one actor action against one target.
type AuditLog struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID      *snowflake.ID     `gorm:"column:tenant_id;index" json:"tenant_id,omitempty"`
	CorrelationID string            `gorm:"column:correlation_id;type:text;not null" json:"correlation_id"`
	ActorType     string            `gorm:"column:actor_type;type:text;not null" json:"actor_type"`
	ActorID       *string           `gorm:"column:actor_id;type:text" json:"actor_id,omitempty"`
	Action        string            `gorm:"type:text;not null;index" json:"action"`
	TargetType    string            `gorm:"column:target_type;type:text;not null" json:"target_type"`
	TargetID      *string           `gorm:"column:target_id;type:text" json:"target_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	IPAddress     *string           `gorm:"column:ip_address;type:text" json:"ip_address,omitempty"`
	UserAgent     *string           `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }

// AuditCursor is the decoded list cursor.
type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

// ListFilter narrows the audit log listing.
type ListFilter struct {
	TenantID   snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *AuditCursor
	Limit      int
}
