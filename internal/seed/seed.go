package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/auth/password"
	moduledomain "github.com/routewise/routewise/internal/module/domain"
	tenantdomain "github.com/routewise/routewise/internal/tenant/domain"
	"gorm.io/gorm"
)

const (
	defaultTenantName    = "Main Agency"
	defaultTenantSlug    = "main"
	defaultAdminEmail    = "admin@routewise.local"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "Routewise Admin"
)

// EnsureDefaultTenant seeds the default agency and the module catalog
// for startup bootstrap.
func EnsureDefaultTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := ensureDefaultTenantTx(ctx, tx, node, 0)
		if err != nil {
			return err
		}
		return ensureModuleCatalogTx(ctx, tx, node, tenant.ID)
	})
}

// EnsureDefaultTenantWithID seeds the default agency under a fixed ID so
// deployments can pin the tenant used by single-agency installs.
func EnsureDefaultTenantWithID(db *gorm.DB, tenantID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if tenantID == 0 {
		return EnsureDefaultTenant(db)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := ensureDefaultTenantTx(ctx, tx, node, snowflake.ID(tenantID))
		if err != nil {
			return err
		}
		return ensureModuleCatalogTx(ctx, tx, node, tenant.ID)
	})
}

// EnsureDefaultTenantAndAdmin seeds the default agency, module catalog
// and a superadmin account for self-hosted installs.
func EnsureDefaultTenantAndAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := ensureDefaultTenantTx(ctx, tx, node, 0)
		if err != nil {
			return err
		}

		var user authdomain.User
		err = tx.WithContext(ctx).
			Where("email = ?", strings.ToLower(defaultAdminEmail)).
			First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hashed, err := password.Hash(defaultAdminPassword)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user = authdomain.User{
				ID:           node.Generate(),
				Email:        strings.ToLower(defaultAdminEmail),
				DisplayName:  defaultAdminDisplay,
				PasswordHash: hashed,
				Role:         authdomain.RoleSuperAdmin,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var member tenantdomain.TenantUser
		err = tx.WithContext(ctx).
			Where("tenant_id = ? AND user_id = ?", tenant.ID, user.ID).
			First(&member).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := time.Now().UTC()
			member = tenantdomain.TenantUser{
				ID:        node.Generate(),
				TenantID:  tenant.ID,
				UserID:    user.ID,
				Role:      authdomain.RoleAgencyAdmin,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.WithContext(ctx).Create(&member).Error; err != nil {
				return err
			}
		}

		return ensureModuleCatalogTx(ctx, tx, node, tenant.ID)
	})
}

func ensureDefaultTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, fixedID snowflake.ID) (tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := tx.WithContext(ctx).Where("slug = ?", defaultTenantSlug).First(&tenant).Error
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant, err
	}

	id := fixedID
	if id == 0 {
		id = node.Generate()
	}
	now := time.Now().UTC()
	tenant = tenantdomain.Tenant{
		ID:        id,
		Name:      defaultTenantName,
		Slug:      defaultTenantSlug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
		return tenant, err
	}
	return tenant, nil
}

// ensureModuleCatalogTx creates every known module and enables it for
// the default tenant.
func ensureModuleCatalogTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID) error {
	for _, name := range moduledomain.KnownNames {
		var mod moduledomain.Module
		err := tx.WithContext(ctx).Where("name = ?", name).First(&mod).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := time.Now().UTC()
			mod = moduledomain.Module{
				ID:        node.Generate(),
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.WithContext(ctx).Create(&mod).Error; err != nil {
				return err
			}
		}

		var flag moduledomain.TenantModule
		err = tx.WithContext(ctx).
			Where("tenant_id = ? AND module_id = ?", tenantID, mod.ID).
			First(&flag).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := time.Now().UTC()
			flag = moduledomain.TenantModule{
				ID:        node.Generate(),
				TenantID:  tenantID,
				ModuleID:  mod.ID,
				IsEnabled: true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.WithContext(ctx).Create(&flag).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
