package auth

import (
	"time"

	"github.com/routewise/routewise/internal/auth/repository"
	"github.com/routewise/routewise/internal/auth/service"
	"github.com/routewise/routewise/internal/auth/token"
	"github.com/routewise/routewise/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(newTokenManager),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

func newTokenManager(cfg config.Config) (*token.Manager, error) {
	return token.NewManager(cfg.AuthJWTSecret, time.Duration(cfg.AuthTokenTTLMin)*time.Minute, cfg.AppName)
}
