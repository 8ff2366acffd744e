package flight

import (
	"github.com/routewise/routewise/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.flight",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.FlightAPIBaseURL == "" {
		return &NoOpProvider{}
	}
	return NewHTTP(Config{
		BaseURL: cfg.FlightAPIBaseURL,
		APIKey:  cfg.FlightAPIKey,
	})
}
