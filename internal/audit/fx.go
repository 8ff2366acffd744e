package audit

import (
	"github.com/routewise/routewise/internal/audit/repository"
	"github.com/routewise/routewise/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
