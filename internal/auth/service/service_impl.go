package service

import (
	"context"
	"strings"
	"time"

	"github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/auth/password"
	"github.com/routewise/routewise/internal/auth/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Tokens *token.Manager
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	tokens *token.Manager
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		repo:   p.Repo,
		tokens: p.Tokens,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.LoginResponse{}, domain.ErrInvalidEmail
	}
	if req.Password == "" {
		return domain.LoginResponse{}, domain.ErrInvalidPassword
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || !user.IsActive || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	signed, expiresAt, err := s.tokens.Issue(user.ID, user.Role, time.Now().UTC())
	if err != nil {
		return domain.LoginResponse{}, err
	}

	user.PasswordHash = ""
	return domain.LoginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

func (s *Service) Resolve(ctx context.Context, bearer string) (domain.Identity, error) {
	raw := strings.TrimSpace(bearer)
	if raw == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	userID, _, err := s.tokens.Parse(raw)
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	if user == nil || !user.IsActive {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	tenantIDs, err := s.repo.ActiveTenantIDs(ctx, s.db, user.ID)
	if err != nil {
		return domain.Identity{}, err
	}

	// The role on record wins over whatever the token says, so role changes
	// take effect without re-issuing tokens.
	return domain.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TenantIDs: tenantIDs,
	}, nil
}
