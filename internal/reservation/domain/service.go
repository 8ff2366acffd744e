package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateReservationRequest struct {
	PassengerName   string     `json:"passenger_name"`
	PassengerPhone  string     `json:"passenger_phone"`
	Pax             int        `json:"pax"`
	PickupLocation  string     `json:"pickup_location"`
	DropoffLocation string     `json:"dropoff_location"`
	FlightNumber    string     `json:"flight_number"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	Price           float64    `json:"price"`
	Notes           string     `json:"notes"`
}

type UpdateReservationRequest struct {
	ID              string
	PassengerName   *string    `json:"passenger_name"`
	PassengerPhone  *string    `json:"passenger_phone"`
	Pax             *int       `json:"pax"`
	PickupLocation  *string    `json:"pickup_location"`
	DropoffLocation *string    `json:"dropoff_location"`
	FlightNumber    *string    `json:"flight_number"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	Price           *float64   `json:"price"`
	Notes           *string    `json:"notes"`
}

type GetReservationRequest struct {
	ID string
}

type ListReservationRequest struct {
	PageToken     string
	PageSize      int32
	Status        string
	DriverID      string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}

type ListReservationFilter struct {
	Status        string
	DriverID      *snowflake.ID
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}

type ListReservationResponse struct {
	pagination.PageInfo
	Reservations []Reservation `json:"reservations"`
}

type AssignDriverRequest struct {
	ID       string
	DriverID string `json:"driver_id"`
}

type TransitionRequest struct {
	ID     string
	Status string `json:"status"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reservation *Reservation) error
	Update(ctx context.Context, db *gorm.DB, reservation *Reservation) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Reservation, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListReservationFilter, page pagination.Pagination) ([]*Reservation, error)
}

type Service interface {
	Create(context.Context, CreateReservationRequest) (Reservation, error)
	Update(context.Context, UpdateReservationRequest) (Reservation, error)
	GetByID(context.Context, GetReservationRequest) (Reservation, error)
	List(context.Context, ListReservationRequest) (ListReservationResponse, error)
	AssignDriver(context.Context, AssignDriverRequest) (Reservation, error)
	Transition(context.Context, TransitionRequest) (Reservation, error)
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidPassenger  = errors.New("invalid_passenger")
	ErrInvalidRoute      = errors.New("invalid_route")
	ErrInvalidSchedule   = errors.New("invalid_schedule")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotFound          = errors.New("not_found")
	ErrDriverNotFound    = errors.New("driver_not_found")
	ErrDriverInactive    = errors.New("driver_inactive")
)
