package providers

import (
	"github.com/routewise/routewise/internal/providers/email"
	"github.com/routewise/routewise/internal/providers/flight"
	"github.com/routewise/routewise/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	flight.Module,
	pdf.Module,
)
