package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/tenant/domain"
	"github.com/routewise/routewise/pkg/db"
	"github.com/routewise/routewise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tenant{}, domain.ErrInvalidName
	}

	branding := datatypes.JSONMap{}
	for k, v := range req.Branding {
		branding[k] = v
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Locale:    strings.TrimSpace(req.Locale),
		Branding:  branding,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &tenant); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Tenant{}, domain.ErrSlugTaken
		}
		return domain.Tenant{}, err
	}
	return tenant, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTenantRequest) (domain.Tenant, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Tenant{}, domain.ErrInvalidID
	}

	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Tenant{}, domain.ErrInvalidName
		}
		tenant.Name = name
	}
	if req.Locale != nil {
		tenant.Locale = strings.TrimSpace(*req.Locale)
	}
	if req.Branding != nil {
		branding := datatypes.JSONMap{}
		for k, v := range *req.Branding {
			branding[k] = v
		}
		tenant.Branding = branding
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, tenant); err != nil {
		return domain.Tenant{}, err
	}
	return *tenant, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTenantRequest) (domain.Tenant, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Tenant{}, domain.ErrInvalidID
	}

	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return *tenant, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTenantRequest) (domain.ListTenantResponse, error) {
	filter := domain.ListTenantFilter{
		Name:     strings.TrimSpace(req.Name),
		IsActive: req.IsActive,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTenantResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(tenant *domain.Tenant) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        tenant.ID.String(),
			CreatedAt: tenant.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	tenants := make([]domain.Tenant, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tenants = append(tenants, *item)
	}

	resp := domain.ListTenantResponse{Tenants: tenants}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) AddMember(ctx context.Context, req domain.AddMemberRequest) (domain.TenantUser, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		return domain.TenantUser{}, domain.ErrInvalidID
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return domain.TenantUser{}, domain.ErrInvalidID
	}
	role := strings.TrimSpace(req.Role)
	if !authdomain.IsKnownRole(role) {
		return domain.TenantUser{}, domain.ErrInvalidRole
	}

	tenant, err := s.repo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return domain.TenantUser{}, err
	}
	if tenant == nil {
		return domain.TenantUser{}, domain.ErrNotFound
	}

	existing, err := s.repo.FindMember(ctx, s.db, tenantID, userID)
	if err != nil {
		return domain.TenantUser{}, err
	}
	if existing != nil {
		return domain.TenantUser{}, domain.ErrMemberExists
	}

	now := time.Now().UTC()
	member := domain.TenantUser{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertMember(ctx, s.db, &member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.TenantUser{}, domain.ErrMemberExists
		}
		return domain.TenantUser{}, err
	}
	return member, nil
}

func (s *Service) UpdateMember(ctx context.Context, req domain.UpdateMemberRequest) (domain.TenantUser, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		return domain.TenantUser{}, domain.ErrInvalidID
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return domain.TenantUser{}, domain.ErrInvalidID
	}

	member, err := s.repo.FindMember(ctx, s.db, tenantID, userID)
	if err != nil {
		return domain.TenantUser{}, err
	}
	if member == nil {
		return domain.TenantUser{}, domain.ErrMemberMissing
	}

	if req.Role != nil {
		role := strings.TrimSpace(*req.Role)
		if !authdomain.IsKnownRole(role) {
			return domain.TenantUser{}, domain.ErrInvalidRole
		}
		member.Role = role
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	member.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateMember(ctx, s.db, member); err != nil {
		return domain.TenantUser{}, err
	}
	return *member, nil
}

func (s *Service) ListMembers(ctx context.Context, req domain.ListMembersRequest) ([]domain.TenantUser, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	items, err := s.repo.ListMembers(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}

	members := make([]domain.TenantUser, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		members = append(members, *item)
	}
	return members, nil
}

func (s *Service) ResolveTarget(ctx context.Context, role string, tenantIDs []snowflake.ID, explicitTenantID string) (snowflake.ID, error) {
	explicit := strings.TrimSpace(explicitTenantID)

	if role == authdomain.RoleSuperAdmin {
		if explicit != "" {
			id, err := snowflake.ParseString(explicit)
			if err != nil {
				return 0, domain.ErrInvalidID
			}
			tenant, err := s.repo.FindByID(ctx, s.db, id)
			if err != nil {
				return 0, err
			}
			if tenant == nil || !tenant.IsActive {
				return 0, domain.ErrNotFound
			}
			return tenant.ID, nil
		}

		tenant, err := s.repo.FirstActive(ctx, s.db)
		if err != nil {
			return 0, err
		}
		if tenant == nil {
			return 0, domain.ErrNoTenant
		}
		s.log.Info("super role fell back to first active tenant",
			zap.String("tenant_id", tenant.ID.String()),
		)
		return tenant.ID, nil
	}

	// Non-super callers only operate on tenants they belong to. An explicit
	// tenant is honoured when it is one of the caller's memberships,
	// otherwise the first membership wins.
	if explicit != "" {
		id, err := snowflake.ParseString(explicit)
		if err == nil {
			for _, candidate := range tenantIDs {
				if candidate == id {
					return id, nil
				}
			}
		}
	}

	if len(tenantIDs) == 0 {
		return 0, domain.ErrNoTenant
	}
	return tenantIDs[0], nil
}
