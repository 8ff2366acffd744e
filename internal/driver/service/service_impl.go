package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/driver/domain"
	"github.com/routewise/routewise/internal/tenantctx"
	"github.com/routewise/routewise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("driver.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDriverRequest) (domain.Driver, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Driver{}, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Driver{}, domain.ErrInvalidName
	}
	seats := req.Seats
	if seats == 0 {
		seats = 4
	}
	if seats < 1 {
		return domain.Driver{}, domain.ErrInvalidSeats
	}

	now := time.Now().UTC()
	driver := domain.Driver{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		Name:         name,
		Phone:        strings.TrimSpace(req.Phone),
		VehicleModel: strings.TrimSpace(req.VehicleModel),
		VehiclePlate: strings.TrimSpace(req.VehiclePlate),
		Seats:        seats,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &driver); err != nil {
		return domain.Driver{}, err
	}
	return driver, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateDriverRequest) (domain.Driver, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Driver{}, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Driver{}, domain.ErrInvalidID
	}

	driver, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Driver{}, err
	}
	if driver == nil {
		return domain.Driver{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Driver{}, domain.ErrInvalidName
		}
		driver.Name = name
	}
	if req.Phone != nil {
		driver.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.VehicleModel != nil {
		driver.VehicleModel = strings.TrimSpace(*req.VehicleModel)
	}
	if req.VehiclePlate != nil {
		driver.VehiclePlate = strings.TrimSpace(*req.VehiclePlate)
	}
	if req.Seats != nil {
		if *req.Seats < 1 {
			return domain.Driver{}, domain.ErrInvalidSeats
		}
		driver.Seats = *req.Seats
	}
	if req.IsActive != nil {
		driver.IsActive = *req.IsActive
	}
	driver.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, driver); err != nil {
		return domain.Driver{}, err
	}
	return *driver, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetDriverRequest) (domain.Driver, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Driver{}, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Driver{}, domain.ErrInvalidID
	}

	driver, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Driver{}, err
	}
	if driver == nil {
		return domain.Driver{}, domain.ErrNotFound
	}
	return *driver, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDriverRequest) (domain.ListDriverResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListDriverResponse{}, domain.ErrInvalidTenant
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, tenantID, domain.ListDriverFilter{IsActive: req.IsActive}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListDriverResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(driver *domain.Driver) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        driver.ID.String(),
			CreatedAt: driver.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	drivers := make([]domain.Driver, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		drivers = append(drivers, *item)
	}

	resp := domain.ListDriverResponse{Drivers: drivers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
