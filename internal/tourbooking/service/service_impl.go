package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/config"
	"github.com/routewise/routewise/internal/observability/metrics"
	"github.com/routewise/routewise/internal/observability/obscontext"
	"github.com/routewise/routewise/internal/tenantctx"
	"github.com/routewise/routewise/internal/tourbooking/domain"
	"github.com/routewise/routewise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Pricing *config.PricingConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	pricing *config.PricingConfigHolder
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("tourbooking.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		pricing: p.Pricing,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTourBookingRequest) (domain.TourBooking, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.TourBooking{}, domain.ErrInvalidTenant
	}

	tourName := strings.TrimSpace(req.TourName)
	if tourName == "" {
		return domain.TourBooking{}, domain.ErrInvalidTour
	}
	guestName := strings.TrimSpace(req.GuestName)
	if guestName == "" {
		return domain.TourBooking{}, domain.ErrInvalidGuest
	}
	if req.TourDate.IsZero() {
		return domain.TourBooking{}, domain.ErrInvalidDate
	}
	if req.Price < 0 {
		return domain.TourBooking{}, domain.ErrInvalidPrice
	}
	pax := req.Pax
	if pax <= 0 {
		pax = 1
	}

	pricing := s.pricing.Current()
	now := time.Now().UTC()
	booking := domain.TourBooking{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		TourName:     tourName,
		GuestName:    guestName,
		TourDate:     req.TourDate.UTC(),
		Pax:          pax,
		Price:        req.Price,
		Commission:   commission(req.Price, s.pricing.CommissionFor("tour")),
		CurrencyCode: pricing.CurrencyCode,
		Status:       domain.StatusPending,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedBy:    creatorFromContext(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &booking); err != nil {
		return domain.TourBooking{}, err
	}

	s.metrics.RecordBookingCreated(ctx, tenantID.String(), "tour")
	return booking, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTourBookingRequest) (domain.TourBooking, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.TourBooking{}, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.TourBooking{}, domain.ErrInvalidID
	}

	booking, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.TourBooking{}, err
	}
	if booking == nil {
		return domain.TourBooking{}, domain.ErrNotFound
	}

	if req.Status == nil &&
		(booking.Status == domain.StatusCompleted || booking.Status == domain.StatusCancelled) {
		return domain.TourBooking{}, domain.ErrInvalidTransition
	}

	if req.TourName != nil {
		tourName := strings.TrimSpace(*req.TourName)
		if tourName == "" {
			return domain.TourBooking{}, domain.ErrInvalidTour
		}
		booking.TourName = tourName
	}
	if req.GuestName != nil {
		guestName := strings.TrimSpace(*req.GuestName)
		if guestName == "" {
			return domain.TourBooking{}, domain.ErrInvalidGuest
		}
		booking.GuestName = guestName
	}
	if req.TourDate != nil {
		if req.TourDate.IsZero() {
			return domain.TourBooking{}, domain.ErrInvalidDate
		}
		booking.TourDate = req.TourDate.UTC()
	}
	if req.Pax != nil {
		if *req.Pax <= 0 {
			return domain.TourBooking{}, domain.ErrInvalidGuest
		}
		booking.Pax = *req.Pax
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.TourBooking{}, domain.ErrInvalidPrice
		}
		booking.Price = *req.Price
		booking.Commission = commission(*req.Price, s.pricing.CommissionFor("tour"))
	}
	if req.Notes != nil {
		booking.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Status != nil {
		target := strings.ToLower(strings.TrimSpace(*req.Status))
		switch target {
		case domain.StatusConfirmed, domain.StatusCompleted, domain.StatusCancelled:
		default:
			return domain.TourBooking{}, domain.ErrInvalidStatus
		}
		if !domain.CanTransition(booking.Status, target) {
			return domain.TourBooking{}, domain.ErrInvalidTransition
		}
		booking.Status = target
	}
	booking.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, booking); err != nil {
		return domain.TourBooking{}, err
	}
	return *booking, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTourBookingRequest) (domain.TourBooking, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.TourBooking{}, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.TourBooking{}, domain.ErrInvalidID
	}

	booking, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.TourBooking{}, err
	}
	if booking == nil {
		return domain.TourBooking{}, domain.ErrNotFound
	}
	return *booking, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTourBookingRequest) (domain.ListTourBookingResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListTourBookingResponse{}, domain.ErrInvalidTenant
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, tenantID, domain.ListTourBookingFilter{
		Status:   strings.TrimSpace(req.Status),
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTourBookingResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(booking *domain.TourBooking) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        booking.ID.String(),
			CreatedAt: booking.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	bookings := make([]domain.TourBooking, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		bookings = append(bookings, *item)
	}

	resp := domain.ListTourBookingResponse{TourBookings: bookings}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func commission(price, rate float64) float64 {
	if price <= 0 || rate <= 0 {
		return 0
	}
	return price * rate / 100
}

func creatorFromContext(ctx context.Context) snowflake.ID {
	_, actorID := obscontext.ActorFromContext(ctx)
	if actorID == "" {
		return 0
	}
	id, err := snowflake.ParseString(actorID)
	if err != nil {
		return 0
	}
	return id
}
