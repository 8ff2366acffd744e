package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/reservation/domain"
	"github.com/routewise/routewise/pkg/db/option"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reservation *domain.Reservation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO reservations (
			id, tenant_id, passenger_name, passenger_phone, pax, pickup_location,
			dropoff_location, flight_number, scheduled_at, price, commission,
			currency_code, status, driver_id, notes, metadata, created_by,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.TenantID,
		reservation.PassengerName,
		reservation.PassengerPhone,
		reservation.Pax,
		reservation.PickupLocation,
		reservation.DropoffLocation,
		reservation.FlightNumber,
		reservation.ScheduledAt,
		reservation.Price,
		reservation.Commission,
		reservation.CurrencyCode,
		reservation.Status,
		reservation.DriverID,
		reservation.Notes,
		reservation.Metadata,
		reservation.CreatedBy,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, reservation *domain.Reservation) error {
	return db.WithContext(ctx).Exec(
		`UPDATE reservations SET
			passenger_name = ?, passenger_phone = ?, pax = ?, pickup_location = ?,
			dropoff_location = ?, flight_number = ?, scheduled_at = ?, price = ?,
			commission = ?, status = ?, driver_id = ?, notes = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		reservation.PassengerName,
		reservation.PassengerPhone,
		reservation.Pax,
		reservation.PickupLocation,
		reservation.DropoffLocation,
		reservation.FlightNumber,
		reservation.ScheduledAt,
		reservation.Price,
		reservation.Commission,
		reservation.Status,
		reservation.DriverID,
		reservation.Notes,
		reservation.UpdatedAt,
		reservation.TenantID,
		reservation.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Reservation, error) {
	var reservation domain.Reservation
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, passenger_name, passenger_phone, pax, pickup_location,
			dropoff_location, flight_number, scheduled_at, price, commission,
			currency_code, status, driver_id, notes, metadata, created_by,
			created_at, updated_at
		 FROM reservations WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&reservation).Error
	if err != nil {
		return nil, err
	}
	if reservation.ID == 0 {
		return nil, nil
	}
	return &reservation, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListReservationFilter, page pagination.Pagination) ([]*domain.Reservation, error) {
	var reservations []*domain.Reservation
	stmt := db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.DriverID != nil {
		stmt = stmt.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.ScheduledFrom != nil {
		stmt = stmt.Where("scheduled_at >= ?", *filter.ScheduledFrom)
	}
	if filter.ScheduledTo != nil {
		stmt = stmt.Where("scheduled_at <= ?", *filter.ScheduledTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}
