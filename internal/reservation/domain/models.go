package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Reservation statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Reservation is a transfer booking for one passenger group.
type Reservation struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID      `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	PassengerName  string            `gorm:"column:passenger_name;type:text;not null" json:"passenger_name"`
	PassengerPhone string            `gorm:"column:passenger_phone;type:text" json:"passenger_phone,omitempty"`
	Pax            int               `gorm:"not null;default:1" json:"pax"`
	PickupLocation string            `gorm:"column:pickup_location;type:text;not null" json:"pickup_location"`
	DropoffLocation string           `gorm:"column:dropoff_location;type:text;not null" json:"dropoff_location"`
	FlightNumber   string            `gorm:"column:flight_number;type:text" json:"flight_number,omitempty"`
	ScheduledAt    time.Time         `gorm:"column:scheduled_at;not null;index" json:"scheduled_at"`
	Price          float64           `gorm:"not null;default:0" json:"price"`
	Commission     float64           `gorm:"not null;default:0" json:"commission"`
	CurrencyCode   string            `gorm:"column:currency_code;type:text;not null" json:"currency_code"`
	Status         string            `gorm:"type:text;not null;index" json:"status"`
	DriverID       *snowflake.ID     `gorm:"column:driver_id;index" json:"driver_id,omitempty"`
	Notes          string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedBy      snowflake.ID      `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Reservation) TableName() string { return "reservations" }

// CanTransition reports whether the status lifecycle allows moving from one
// status to the next. Completed and cancelled are terminal.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}
