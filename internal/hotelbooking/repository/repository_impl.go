package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/hotelbooking/domain"
	"github.com/routewise/routewise/pkg/db/option"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.HotelBooking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO hotel_bookings (
			id, tenant_id, hotel_name, guest_name, check_in, check_out, rooms, pax,
			price, commission, currency_code, status, notes, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.TenantID,
		booking.HotelName,
		booking.GuestName,
		booking.CheckIn,
		booking.CheckOut,
		booking.Rooms,
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

func (r *repo) Update(ctx context.Context, db *gorm.DB, booking *domain.HotelBooking) error {
	return db.WithContext(ctx).Exec(
		`UPDATE hotel_bookings SET hotel_name = ?, guest_name = ?, check_in = ?, check_out = ?,
			rooms = ?, pax = ?, price = ?, commission = ?, status = ?, notes = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		booking.HotelName,
		booking.GuestName,
		booking.CheckIn,
		booking.CheckOut,
		booking.Rooms,
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

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.HotelBooking, error) {
	var booking domain.HotelBooking
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, hotel_name, guest_name, check_in, check_out, rooms, pax,
			price, commission, currency_code, status, notes, created_by, created_at, updated_at
		 FROM hotel_bookings WHERE tenant_id = ? AND id = ?`,
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

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListHotelBookingFilter, page pagination.Pagination) ([]*domain.HotelBooking, error) {
	var bookings []*domain.HotelBooking
	stmt := db.WithContext(ctx).
		Model(&domain.HotelBooking{}).
		Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CheckInFrom != nil {
		stmt = stmt.Where("check_in >= ?", *filter.CheckInFrom)
	}
	if filter.CheckInTo != nil {
		stmt = stmt.Where("check_in <= ?", *filter.CheckInTo)
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
