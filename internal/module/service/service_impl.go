package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/module/domain"
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
		log:   p.Log.Named("module.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Enabled(ctx context.Context, role string, tenantID snowflake.ID, moduleName string) error {
	if role == authdomain.RoleSuperAdmin {
		return nil
	}

	name := strings.TrimSpace(moduleName)
	module, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return err
	}
	if module == nil {
		s.log.Error("module gate checked an undefined module",
			zap.String("module", name),
			zap.String("tenant_id", tenantID.String()),
		)
		return domain.ErrModuleNotDefined
	}

	row, err := s.repo.FindTenantModule(ctx, s.db, tenantID, module.ID)
	if err != nil {
		return err
	}
	if row == nil || !row.IsEnabled {
		return domain.ErrModuleDisabled
	}
	return nil
}

func (s *Service) ListFlags(ctx context.Context, req domain.ListFlagsRequest) ([]domain.TenantModuleFlag, error) {
	modules, err := s.repo.ListModules(ctx, s.db)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTenantModules(ctx, s.db, req.TenantID)
	if err != nil {
		return nil, err
	}

	enabled := make(map[snowflake.ID]bool, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		enabled[row.ModuleID] = row.IsEnabled
	}

	flags := make([]domain.TenantModuleFlag, 0, len(modules))
	for _, module := range modules {
		if module == nil {
			continue
		}
		flags = append(flags, domain.TenantModuleFlag{
			Name:      module.Name,
			IsEnabled: enabled[module.ID],
		})
	}
	return flags, nil
}

func (s *Service) SetTenantModule(ctx context.Context, req domain.SetTenantModuleRequest) (domain.TenantModule, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		return domain.TenantModule{}, domain.ErrInvalidID
	}

	module, err := s.repo.FindByName(ctx, s.db, strings.TrimSpace(req.Module))
	if err != nil {
		return domain.TenantModule{}, err
	}
	if module == nil {
		return domain.TenantModule{}, domain.ErrModuleNotDefined
	}

	now := time.Now().UTC()
	row := domain.TenantModule{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		ModuleID:  module.ID,
		IsEnabled: req.IsEnabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertTenantModule(ctx, s.db, &row); err != nil {
		return domain.TenantModule{}, err
	}

	s.log.Info("tenant module switched",
		zap.String("tenant_id", tenantID.String()),
		zap.String("module", module.Name),
		zap.Bool("is_enabled", req.IsEnabled),
	)
	return row, nil
}

func (s *Service) ListModules(ctx context.Context) ([]domain.Module, error) {
	items, err := s.repo.ListModules(ctx, s.db)
	if err != nil {
		return nil, err
	}
	modules := make([]domain.Module, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		modules = append(modules, *item)
	}
	return modules, nil
}
