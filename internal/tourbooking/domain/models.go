package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Booking statuses shared by tour and hotel bookings.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// TourBooking is a tenant's booking on a guided tour.
type TourBooking struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	TourName     string       `gorm:"column:tour_name;type:text;not null" json:"tour_name"`
	GuestName    string       `gorm:"column:guest_name;type:text;not null" json:"guest_name"`
	TourDate     time.Time    `gorm:"column:tour_date;not null;index" json:"tour_date"`
	Pax          int          `gorm:"not null;default:1" json:"pax"`
	Price        float64      `gorm:"not null;default:0" json:"price"`
	Commission   float64      `gorm:"not null;default:0" json:"commission"`
	CurrencyCode string       `gorm:"column:currency_code;type:text;not null" json:"currency_code"`
	Status       string       `gorm:"type:text;not null;index" json:"status"`
	Notes        string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy    snowflake.ID `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TourBooking) TableName() string { return "tour_bookings" }

// CanTransition mirrors the reservation lifecycle.
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
