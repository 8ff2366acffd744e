package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// HotelBooking is an accommodation booking placed for a guest.
type HotelBooking struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	HotelName    string       `gorm:"column:hotel_name;type:text;not null" json:"hotel_name"`
	GuestName    string       `gorm:"column:guest_name;type:text;not null" json:"guest_name"`
	CheckIn      time.Time    `gorm:"column:check_in;not null;index" json:"check_in"`
	CheckOut     time.Time    `gorm:"column:check_out;not null" json:"check_out"`
	Rooms        int          `gorm:"not null;default:1" json:"rooms"`
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
func (HotelBooking) TableName() string { return "hotel_bookings" }

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
