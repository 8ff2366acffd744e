package invoice

import (
	"github.com/routewise/routewise/internal/invoice/repository"
	"github.com/routewise/routewise/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
