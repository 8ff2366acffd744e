package tenant

import (
	"github.com/routewise/routewise/internal/tenant/repository"
	"github.com/routewise/routewise/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
