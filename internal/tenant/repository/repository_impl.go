package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/tenant/domain"
	"github.com/routewise/routewise/pkg/db/option"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, name, slug, locale, branding, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.Locale,
		tenant.Branding,
		tenant.IsActive,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants SET name = ?, locale = ?, branding = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		tenant.Name,
		tenant.Locale,
		tenant.Branding,
		tenant.IsActive,
		tenant.UpdatedAt,
		tenant.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, locale, branding, is_active, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, locale, branding, is_active, created_at, updated_at
		 FROM tenants WHERE slug = ?`,
		slug,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTenantFilter, page pagination.Pagination) ([]*domain.Tenant, error) {
	var tenants []*domain.Tenant
	stmt := db.WithContext(ctx).Model(&domain.Tenant{})
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) FirstActive(ctx context.Context, db *gorm.DB) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, locale, branding, is_active, created_at, updated_at
		 FROM tenants WHERE is_active ORDER BY created_at ASC, id ASC LIMIT 1`,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) InsertMember(ctx context.Context, db *gorm.DB, member *domain.TenantUser) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenant_users (id, tenant_id, user_id, role, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.ID,
		member.TenantID,
		member.UserID,
		member.Role,
		member.IsActive,
		member.CreatedAt,
		member.UpdatedAt,
	).Error
}

func (r *repo) UpdateMember(ctx context.Context, db *gorm.DB, member *domain.TenantUser) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenant_users SET role = ?, is_active = ?, updated_at = ?
		 WHERE tenant_id = ? AND user_id = ?`,
		member.Role,
		member.IsActive,
		member.UpdatedAt,
		member.TenantID,
		member.UserID,
	).Error
}

func (r *repo) FindMember(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*domain.TenantUser, error) {
	var member domain.TenantUser
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, user_id, role, is_active, created_at, updated_at
		 FROM tenant_users WHERE tenant_id = ? AND user_id = ?`,
		tenantID,
		userID,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) ListMembers(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.TenantUser, error) {
	var members []*domain.TenantUser
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, user_id, role, is_active, created_at, updated_at
		 FROM tenant_users WHERE tenant_id = ? ORDER BY created_at ASC, id ASC`,
		tenantID,
	).Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
