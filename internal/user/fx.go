package user

import (
	"github.com/routewise/routewise/internal/user/repository"
	"github.com/routewise/routewise/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
