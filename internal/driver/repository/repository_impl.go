package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/driver/domain"
	"github.com/routewise/routewise/pkg/db/option"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, driver *domain.Driver) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO drivers (id, tenant_id, name, phone, vehicle_model, vehicle_plate, seats, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		driver.ID,
		driver.TenantID,
		driver.Name,
		driver.Phone,
		driver.VehicleModel,
		driver.VehiclePlate,
		driver.Seats,
		driver.IsActive,
		driver.CreatedAt,
		driver.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, driver *domain.Driver) error {
	return db.WithContext(ctx).Exec(
		`UPDATE drivers SET name = ?, phone = ?, vehicle_model = ?, vehicle_plate = ?, seats = ?, is_active = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		driver.Name,
		driver.Phone,
		driver.VehicleModel,
		driver.VehiclePlate,
		driver.Seats,
		driver.IsActive,
		driver.UpdatedAt,
		driver.TenantID,
		driver.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Driver, error) {
	var driver domain.Driver
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, name, phone, vehicle_model, vehicle_plate, seats, is_active, created_at, updated_at
		 FROM drivers WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&driver).Error
	if err != nil {
		return nil, err
	}
	if driver.ID == 0 {
		return nil, nil
	}
	return &driver, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListDriverFilter, page pagination.Pagination) ([]*domain.Driver, error) {
	var drivers []*domain.Driver
	stmt := db.WithContext(ctx).
		Model(&domain.Driver{}).
		Where("tenant_id = ?", tenantID)
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}
