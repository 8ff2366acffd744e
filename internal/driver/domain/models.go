package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Driver is a tenant's transfer driver.
type Driver struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Phone        string       `gorm:"type:text" json:"phone,omitempty"`
	VehicleModel string       `gorm:"column:vehicle_model;type:text" json:"vehicle_model,omitempty"`
	VehiclePlate string       `gorm:"column:vehicle_plate;type:text" json:"vehicle_plate,omitempty"`
	Seats        int          `gorm:"not null;default:4" json:"seats"`
	IsActive     bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Driver) TableName() string { return "drivers" }
