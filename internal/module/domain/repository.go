package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Module, error)
	ListModules(ctx context.Context, db *gorm.DB) ([]*Module, error)
	FindTenantModule(ctx context.Context, db *gorm.DB, tenantID, moduleID snowflake.ID) (*TenantModule, error)
	ListTenantModules(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*TenantModule, error)
	UpsertTenantModule(ctx context.Context, db *gorm.DB, row *TenantModule) error
}
