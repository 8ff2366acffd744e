package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/auth/password"
	"github.com/routewise/routewise/internal/user/domain"
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
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (authdomain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return authdomain.User{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return authdomain.User{}, domain.ErrInvalidPassword
	}
	role := strings.TrimSpace(req.Role)
	if !authdomain.IsKnownRole(role) {
		return authdomain.User{}, domain.ErrInvalidRole
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return authdomain.User{}, err
	}

	now := time.Now().UTC()
	user := authdomain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return authdomain.User{}, domain.ErrEmailTaken
		}
		return authdomain.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (authdomain.User, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return authdomain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return authdomain.User{}, err
	}
	if user == nil {
		return authdomain.User{}, domain.ErrNotFound
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Role != nil {
		role := strings.TrimSpace(*req.Role)
		if !authdomain.IsKnownRole(role) {
			return authdomain.User{}, domain.ErrInvalidRole
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return authdomain.User{}, domain.ErrInvalidPassword
		}
		hashed, err := password.Hash(*req.Password)
		if err != nil {
			return authdomain.User{}, err
		}
		user.PasswordHash = hashed
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return authdomain.User{}, err
	}

	user.PasswordHash = ""
	return *user, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetUserRequest) (authdomain.User, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return authdomain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return authdomain.User{}, err
	}
	if user == nil {
		return authdomain.User{}, domain.ErrNotFound
	}

	user.PasswordHash = ""
	return *user, nil
}

func (s *Service) List(ctx context.Context, req domain.ListUserRequest) (domain.ListUserResponse, error) {
	filter := domain.ListUserFilter{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     strings.TrimSpace(req.Role),
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
		return domain.ListUserResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(user *authdomain.User) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        user.ID.String(),
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	users := make([]authdomain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		item.PasswordHash = ""
		users = append(users, *item)
	}

	resp := domain.ListUserResponse{Users: users}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GrantPermission(ctx context.Context, req domain.GrantPermissionRequest) (domain.UserPermission, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return domain.UserPermission{}, domain.ErrInvalidID
	}
	permission := strings.TrimSpace(req.Permission)
	if permission == "" {
		return domain.UserPermission{}, domain.ErrInvalidPermission
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.UserPermission{}, err
	}
	if user == nil {
		return domain.UserPermission{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	grant := domain.UserPermission{
		ID:         s.genID.Generate(),
		UserID:     userID,
		Permission: permission,
		IsActive:   true,
		GrantedBy:  req.GrantedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.UpsertPermission(ctx, s.db, &grant); err != nil {
		return domain.UserPermission{}, err
	}

	s.log.Info("permission granted",
		zap.String("user_id", userID.String()),
		zap.String("permission", permission),
	)
	return grant, nil
}

func (s *Service) RevokePermission(ctx context.Context, req domain.RevokePermissionRequest) (domain.UserPermission, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return domain.UserPermission{}, domain.ErrInvalidID
	}
	permission := strings.TrimSpace(req.Permission)
	if permission == "" {
		return domain.UserPermission{}, domain.ErrInvalidPermission
	}

	grant, err := s.repo.FindPermission(ctx, s.db, userID, permission)
	if err != nil {
		return domain.UserPermission{}, err
	}
	if grant == nil {
		return domain.UserPermission{}, domain.ErrGrantMissing
	}

	grant.IsActive = false
	grant.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpsertPermission(ctx, s.db, grant); err != nil {
		return domain.UserPermission{}, err
	}

	s.log.Info("permission revoked",
		zap.String("user_id", userID.String()),
		zap.String("permission", permission),
	)
	return *grant, nil
}

func (s *Service) ListPermissions(ctx context.Context, req domain.ListPermissionsRequest) ([]domain.UserPermission, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	items, err := s.repo.ListPermissions(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	grants := make([]domain.UserPermission, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		grants = append(grants, *item)
	}
	return grants, nil
}
