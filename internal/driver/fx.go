package driver

import (
	"github.com/routewise/routewise/internal/driver/repository"
	"github.com/routewise/routewise/internal/driver/service"
	"go.uber.org/fx"
)

var Module = fx.Module("driver.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
