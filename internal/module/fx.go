package module

import (
	"github.com/routewise/routewise/internal/module/repository"
	"github.com/routewise/routewise/internal/module/service"
	"go.uber.org/fx"
)

var Module = fx.Module("module.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
