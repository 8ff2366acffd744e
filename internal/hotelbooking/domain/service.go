package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateHotelBookingRequest struct {
	HotelName string    `json:"hotel_name"`
	GuestName string    `json:"guest_name"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Rooms     int       `json:"rooms"`
	Pax       int       `json:"pax"`
	Price     float64   `json:"price"`
	Notes     string    `json:"notes"`
}

type UpdateHotelBookingRequest struct {
	ID        string
	HotelName *string    `json:"hotel_name"`
	GuestName *string    `json:"guest_name"`
	CheckIn   *time.Time `json:"check_in"`
	CheckOut  *time.Time `json:"check_out"`
	Rooms     *int       `json:"rooms"`
	Pax       *int       `json:"pax"`
	Price     *float64   `json:"price"`
	Notes     *string    `json:"notes"`
	Status    *string    `json:"status"`
}

type GetHotelBookingRequest struct {
	ID string
}

type ListHotelBookingRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	CheckInFrom *time.Time
	CheckInTo   *time.Time
}

type ListHotelBookingFilter struct {
	Status      string
	CheckInFrom *time.Time
	CheckInTo   *time.Time
}

type ListHotelBookingResponse struct {
	pagination.PageInfo
	HotelBookings []HotelBooking `json:"hotel_bookings"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *HotelBooking) error
	Update(ctx context.Context, db *gorm.DB, booking *HotelBooking) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*HotelBooking, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListHotelBookingFilter, page pagination.Pagination) ([]*HotelBooking, error)
}

type Service interface {
	Create(context.Context, CreateHotelBookingRequest) (HotelBooking, error)
	Update(context.Context, UpdateHotelBookingRequest) (HotelBooking, error)
	GetByID(context.Context, GetHotelBookingRequest) (HotelBooking, error)
	List(context.Context, ListHotelBookingRequest) (ListHotelBookingResponse, error)
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidHotel      = errors.New("invalid_hotel")
	ErrInvalidGuest      = errors.New("invalid_guest")
	ErrInvalidStay       = errors.New("invalid_stay")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotFound          = errors.New("not_found")
)
