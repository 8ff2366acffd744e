package reservation

import (
	"github.com/routewise/routewise/internal/reservation/repository"
	"github.com/routewise/routewise/internal/reservation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reservation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
