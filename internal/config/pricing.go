package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingConfig carries agency-level pricing defaults that operations staff
// tune without redeploying: commission percentages per product line and the
// surcharge applied to night transfers.
type PricingConfig struct {
	Commissions    map[string]float64 `mapstructure:"commissions"`
	NightSurcharge float64            `mapstructure:"night_surcharge"`
	CurrencyCode   string             `mapstructure:"currency_code"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Commissions: map[string]float64{
			"transfer":      10,
			"tour":          15,
			"accommodation": 12,
		},
		NightSurcharge: 20,
		CurrencyCode:   "EUR",
	}
}

// PricingConfigHolder hands out the current pricing config and hot-reloads it
// when the watched file changes.
type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/routewise/config")
	v.AddConfigPath("/etc/routewise")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ROUTEWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	holder := &PricingConfigHolder{}
	holder.store(readPricingConfig(v))

	v.OnConfigChange(func(_ fsnotify.Event) {
		holder.store(readPricingConfig(v))
		log.Println("pricing config reloaded")
	})
	v.WatchConfig()

	return holder, nil
}

func (h *PricingConfigHolder) Current() PricingConfig {
	value := h.current.Load()
	cfg, ok := value.(PricingConfig)
	if !ok {
		return DefaultPricingConfig()
	}
	return cfg
}

func (h *PricingConfigHolder) store(cfg PricingConfig) {
	h.current.Store(cfg)
}

// CommissionFor returns the commission percentage for a product line, falling
// back to the compiled default when the file omits the key.
func (h *PricingConfigHolder) CommissionFor(line string) float64 {
	cfg := h.Current()
	if rate, ok := cfg.Commissions[strings.ToLower(strings.TrimSpace(line))]; ok {
		return rate
	}
	defaults := DefaultPricingConfig()
	if rate, ok := defaults.Commissions[strings.ToLower(strings.TrimSpace(line))]; ok {
		return rate
	}
	return 0
}

func readPricingConfig(v *viper.Viper) PricingConfig {
	cfg := DefaultPricingConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("pricing config unmarshal failed, keeping defaults: %v", err)
		return DefaultPricingConfig()
	}
	if cfg.Commissions == nil {
		cfg.Commissions = DefaultPricingConfig().Commissions
	}
	if cfg.CurrencyCode == "" {
		cfg.CurrencyCode = DefaultPricingConfig().CurrencyCode
	}
	return cfg
}
