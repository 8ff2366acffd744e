package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	Update(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB, filter ListTenantFilter, page pagination.Pagination) ([]*Tenant, error)
	// FirstActive returns the oldest active tenant by (created_at, id).
	FirstActive(ctx context.Context, db *gorm.DB) (*Tenant, error)

	InsertMember(ctx context.Context, db *gorm.DB, member *TenantUser) error
	UpdateMember(ctx context.Context, db *gorm.DB, member *TenantUser) error
	FindMember(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*TenantUser, error)
	ListMembers(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*TenantUser, error)
}
