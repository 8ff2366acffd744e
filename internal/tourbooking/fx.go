package tourbooking

import (
	"github.com/routewise/routewise/internal/tourbooking/repository"
	"github.com/routewise/routewise/internal/tourbooking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tourbooking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
