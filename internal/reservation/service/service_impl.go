package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/config"
	driverdomain "github.com/routewise/routewise/internal/driver/domain"
	"github.com/routewise/routewise/internal/observability/metrics"
	"github.com/routewise/routewise/internal/observability/obscontext"
	"github.com/routewise/routewise/internal/reservation/domain"
	"github.com/routewise/routewise/internal/tenantctx"
	"github.com/routewise/routewise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	DriverRepo driverdomain.Repository
	Pricing    *config.PricingConfigHolder
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	driverRepo driverdomain.Repository
	pricing    *config.PricingConfigHolder
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("reservation.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		driverRepo: p.DriverRepo,
		pricing:    p.Pricing,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateReservationRequest) (domain.Reservation, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Reservation{}, domain.ErrInvalidTenant
	}

	passenger := strings.TrimSpace(req.PassengerName)
	if passenger == "" {
		return domain.Reservation{}, domain.ErrInvalidPassenger
	}
	pickup := strings.TrimSpace(req.PickupLocation)
	dropoff := strings.TrimSpace(req.DropoffLocation)
	if pickup == "" || dropoff == "" {
		return domain.Reservation{}, domain.ErrInvalidRoute
	}
	if req.ScheduledAt.IsZero() {
		return domain.Reservation{}, domain.ErrInvalidSchedule
	}
	if req.Price < 0 {
		return domain.Reservation{}, domain.ErrInvalidPrice
	}
	pax := req.Pax
	if pax <= 0 {
		pax = 1
	}

	pricing := s.pricing.Current()
	scheduledAt := req.ScheduledAt.UTC()
	price := req.Price
	if price > 0 && nightPickup(scheduledAt) {
		price += pricing.NightSurcharge
	}

	now := time.Now().UTC()
	reservation := domain.Reservation{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		PassengerName:   passenger,
		PassengerPhone:  strings.TrimSpace(req.PassengerPhone),
		Pax:             pax,
		PickupLocation:  pickup,
		DropoffLocation: dropoff,
		FlightNumber:    strings.ToUpper(strings.TrimSpace(req.FlightNumber)),
		ScheduledAt:     scheduledAt,
		Price:           price,
		Commission:      commission(price, s.pricing.CommissionFor("transfer")),
		CurrencyCode:    pricing.CurrencyCode,
		Status:          domain.StatusPending,
		Notes:           strings.TrimSpace(req.Notes),
		Metadata:        datatypes.JSONMap{},
		CreatedBy:       creatorFromContext(ctx),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &reservation); err != nil {
		return domain.Reservation{}, err
	}

	s.metrics.RecordReservationCreated(ctx, tenantID.String())
	return reservation, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateReservationRequest) (domain.Reservation, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Reservation{}, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	reservation, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if reservation == nil {
		return domain.Reservation{}, domain.ErrNotFound
	}
	if reservation.Status == domain.StatusCompleted || reservation.Status == domain.StatusCancelled {
		return domain.Reservation{}, domain.ErrInvalidTransition
	}

	if req.PassengerName != nil {
		passenger := strings.TrimSpace(*req.PassengerName)
		if passenger == "" {
			return domain.Reservation{}, domain.ErrInvalidPassenger
		}
		reservation.PassengerName = passenger
	}
	if req.PassengerPhone != nil {
		reservation.PassengerPhone = strings.TrimSpace(*req.PassengerPhone)
	}
	if req.Pax != nil {
		if *req.Pax <= 0 {
			return domain.Reservation{}, domain.ErrInvalidPassenger
		}
		reservation.Pax = *req.Pax
	}
	if req.PickupLocation != nil {
		pickup := strings.TrimSpace(*req.PickupLocation)
		if pickup == "" {
			return domain.Reservation{}, domain.ErrInvalidRoute
		}
		reservation.PickupLocation = pickup
	}
	if req.DropoffLocation != nil {
		dropoff := strings.TrimSpace(*req.DropoffLocation)
		if dropoff == "" {
			return domain.Reservation{}, domain.ErrInvalidRoute
		}
		reservation.DropoffLocation = dropoff
	}
	if req.FlightNumber != nil {
		reservation.FlightNumber = strings.ToUpper(strings.TrimSpace(*req.FlightNumber))
	}
	if req.ScheduledAt != nil {
		if req.ScheduledAt.IsZero() {
			return domain.Reservation{}, domain.ErrInvalidSchedule
		}
		reservation.ScheduledAt = req.ScheduledAt.UTC()
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.Reservation{}, domain.ErrInvalidPrice
		}
		// An updated price is final; the night surcharge is only folded in
		// at create time.
		reservation.Price = *req.Price
		reservation.Commission = commission(*req.Price, s.pricing.CommissionFor("transfer"))
	}
	if req.Notes != nil {
		reservation.Notes = strings.TrimSpace(*req.Notes)
	}
	reservation.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, reservation); err != nil {
		return domain.Reservation{}, err
	}
	return *reservation, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetReservationRequest) (domain.Reservation, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Reservation{}, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	reservation, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if reservation == nil {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return *reservation, nil
}

func (s *Service) List(ctx context.Context, req domain.ListReservationRequest) (domain.ListReservationResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListReservationResponse{}, domain.ErrInvalidTenant
	}

	filter := domain.ListReservationFilter{
		Status:        strings.TrimSpace(req.Status),
		ScheduledFrom: req.ScheduledFrom,
		ScheduledTo:   req.ScheduledTo,
	}
	if raw := strings.TrimSpace(req.DriverID); raw != "" {
		driverID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListReservationResponse{}, domain.ErrInvalidID
		}
		filter.DriverID = &driverID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, tenantID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListReservationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(reservation *domain.Reservation) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        reservation.ID.String(),
			CreatedAt: reservation.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	reservations := make([]domain.Reservation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		reservations = append(reservations, *item)
	}

	resp := domain.ListReservationResponse{Reservations: reservations}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) AssignDriver(ctx context.Context, req domain.AssignDriverRequest) (domain.Reservation, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Reservation{}, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	reservation, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if reservation == nil {
		return domain.Reservation{}, domain.ErrNotFound
	}
	if reservation.Status == domain.StatusCompleted || reservation.Status == domain.StatusCancelled {
		return domain.Reservation{}, domain.ErrInvalidTransition
	}

	raw := strings.TrimSpace(req.DriverID)
	if raw == "" {
		// Empty driver ID clears the assignment.
		reservation.DriverID = nil
	} else {
		driverID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		driver, err := s.driverRepo.FindByID(ctx, s.db, tenantID, driverID)
		if err != nil {
			return domain.Reservation{}, err
		}
		if driver == nil {
			return domain.Reservation{}, domain.ErrDriverNotFound
		}
		if !driver.IsActive {
			return domain.Reservation{}, domain.ErrDriverInactive
		}
		reservation.DriverID = &driverID
	}
	reservation.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, reservation); err != nil {
		return domain.Reservation{}, err
	}

	s.log.Info("driver assignment changed",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("tenant_id", tenantID.String()),
	)
	return *reservation, nil
}

func (s *Service) Transition(ctx context.Context, req domain.TransitionRequest) (domain.Reservation, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Reservation{}, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	target := strings.ToLower(strings.TrimSpace(req.Status))
	switch target {
	case domain.StatusConfirmed, domain.StatusCompleted, domain.StatusCancelled:
	default:
		return domain.Reservation{}, domain.ErrInvalidStatus
	}

	reservation, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if reservation == nil {
		return domain.Reservation{}, domain.ErrNotFound
	}
	if !domain.CanTransition(reservation.Status, target) {
		return domain.Reservation{}, domain.ErrInvalidTransition
	}

	reservation.Status = target
	reservation.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, reservation); err != nil {
		return domain.Reservation{}, err
	}

	s.log.Info("reservation status changed",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("status", target),
	)
	return *reservation, nil
}

// nightPickup covers pickups between 22:00 and 06:00 UTC, which carry the
// configured surcharge.
func nightPickup(at time.Time) bool {
	hour := at.Hour()
	return hour >= 22 || hour < 6
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
