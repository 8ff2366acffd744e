package hotelbooking

import (
	"github.com/routewise/routewise/internal/hotelbooking/repository"
	"github.com/routewise/routewise/internal/hotelbooking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("hotelbooking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
