package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateDriverRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	VehicleModel string `json:"vehicle_model"`
	VehiclePlate string `json:"vehicle_plate"`
	Seats        int    `json:"seats"`
}

type UpdateDriverRequest struct {
	ID           string
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	VehicleModel *string `json:"vehicle_model"`
	VehiclePlate *string `json:"vehicle_plate"`
	Seats        *int    `json:"seats"`
	IsActive     *bool   `json:"is_active"`
}

type GetDriverRequest struct {
	ID string
}

type ListDriverRequest struct {
	PageToken string
	PageSize  int32
	IsActive  *bool
}

type ListDriverFilter struct {
	IsActive *bool
}

type ListDriverResponse struct {
	pagination.PageInfo
	Drivers []Driver `json:"drivers"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, driver *Driver) error
	Update(ctx context.Context, db *gorm.DB, driver *Driver) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Driver, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListDriverFilter, page pagination.Pagination) ([]*Driver, error)
}

type Service interface {
	Create(context.Context, CreateDriverRequest) (Driver, error)
	Update(context.Context, UpdateDriverRequest) (Driver, error)
	GetByID(context.Context, GetDriverRequest) (Driver, error)
	List(context.Context, ListDriverRequest) (ListDriverResponse, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidSeats  = errors.New("invalid_seats")
	ErrNotFound      = errors.New("not_found")
)
