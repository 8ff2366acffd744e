package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateTourBookingRequest struct {
	TourName  string    `json:"tour_name"`
	GuestName string    `json:"guest_name"`
	TourDate  time.Time `json:"tour_date"`
	Pax       int       `json:"pax"`
	Price     float64   `json:"price"`
	Notes     string    `json:"notes"`
}

type UpdateTourBookingRequest struct {
	ID        string
	TourName  *string    `json:"tour_name"`
	GuestName *string    `json:"guest_name"`
	TourDate  *time.Time `json:"tour_date"`
	Pax       *int       `json:"pax"`
	Price     *float64   `json:"price"`
	Notes     *string    `json:"notes"`
	Status    *string    `json:"status"`
}

type GetTourBookingRequest struct {
	ID string
}

type ListTourBookingRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
}

type ListTourBookingFilter struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

type ListTourBookingResponse struct {
	pagination.PageInfo
	TourBookings []TourBooking `json:"tour_bookings"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *TourBooking) error
	Update(ctx context.Context, db *gorm.DB, booking *TourBooking) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*TourBooking, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListTourBookingFilter, page pagination.Pagination) ([]*TourBooking, error)
}

type Service interface {
	Create(context.Context, CreateTourBookingRequest) (TourBooking, error)
	Update(context.Context, UpdateTourBookingRequest) (TourBooking, error)
	GetByID(context.Context, GetTourBookingRequest) (TourBooking, error)
	List(context.Context, ListTourBookingRequest) (ListTourBookingResponse, error)
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidTour       = errors.New("invalid_tour")
	ErrInvalidGuest      = errors.New("invalid_guest")
	ErrInvalidDate       = errors.New("invalid_date")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotFound          = errors.New("not_found")
)
