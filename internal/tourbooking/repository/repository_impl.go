package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/tourbooking/domain"
	"github.com/routewise/routewise/pkg/db/option"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.TourBooking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tour_bookings (
			id, tenant_id, tour_name, guest_name, tour_date, pax, price,
			commission, currency_code, status, notes, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.TenantID,
		booking.TourName,
		booking.GuestName,
		booking.TourDate,
		booking.Pax,
		booking.Price,
		booking.Commission,
		booking.CurrencyCode,
		booking.Status,
		booking.Notes,
		booking.CreatedBy,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, booking *domain.TourBooking) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tour_bookings SET tour_name = ?, guest_name = ?, tour_date = ?, pax = ?,
			price = ?, commission = ?, status = ?, notes = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		booking.TourName,
		booking.GuestName,
		booking.TourDate,
		booking.Pax,
		booking.Price,
		booking.Commission,
		booking.Status,
		booking.Notes,
		booking.UpdatedAt,
		booking.TenantID,
		booking.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.TourBooking, error) {
	var booking domain.TourBooking
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, tour_name, guest_name, tour_date, pax, price,
			commission, currency_code, status, notes, created_by, created_at, updated_at
		 FROM tour_bookings WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListTourBookingFilter, page pagination.Pagination) ([]*domain.TourBooking, error) {
	var bookings []*domain.TourBooking
	stmt := db.WithContext(ctx).
		Model(&domain.TourBooking{}).
		Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("tour_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("tour_date <= ?", *filter.DateTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
