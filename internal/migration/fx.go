package migration

import (
	"github.com/routewise/routewise/internal/config"
	"github.com/routewise/routewise/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			log.Named("migration").Warn("skipping migrations for non-postgres database",
				zap.String("db_type", cfg.DBType),
			)
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.DefaultTenantID != 0 {
			if err := seed.EnsureDefaultTenantWithID(conn, cfg.DefaultTenantID); err != nil {
				return err
			}
		}
		return seed.EnsureDefaultTenantAndAdmin(conn)
	}),
)
