package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/module/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Module, error) {
	var module domain.Module
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, created_at, updated_at FROM modules WHERE name = ?`,
		name,
	).Scan(&module).Error
	if err != nil {
		return nil, err
	}
	if module.ID == 0 {
		return nil, nil
	}
	return &module, nil
}

func (r *repo) ListModules(ctx context.Context, db *gorm.DB) ([]*domain.Module, error) {
	var modules []*domain.Module
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, created_at, updated_at FROM modules ORDER BY name ASC`,
	).Scan(&modules).Error
	if err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *repo) FindTenantModule(ctx context.Context, db *gorm.DB, tenantID, moduleID snowflake.ID) (*domain.TenantModule, error) {
	var row domain.TenantModule
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, module_id, is_enabled, created_at, updated_at
		 FROM tenant_modules WHERE tenant_id = ? AND module_id = ?`,
		tenantID,
		moduleID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) ListTenantModules(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.TenantModule, error) {
	var rows []*domain.TenantModule
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, module_id, is_enabled, created_at, updated_at
		 FROM tenant_modules WHERE tenant_id = ?`,
		tenantID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) UpsertTenantModule(ctx context.Context, db *gorm.DB, row *domain.TenantModule) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE tenant_modules SET is_enabled = ?, updated_at = ?
		 WHERE tenant_id = ? AND module_id = ?`,
		row.IsEnabled,
		row.UpdatedAt,
		row.TenantID,
		row.ModuleID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenant_modules (id, tenant_id, module_id, is_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		row.ID,
		row.TenantID,
		row.ModuleID,
		row.IsEnabled,
		row.CreatedAt,
		row.UpdatedAt,
	).Error
}
