package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/module/domain"
	"github.com/routewise/routewise/internal/module/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupModuleService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.Exec(`CREATE TABLE modules (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create modules: %v", err)
	}
	if err := db.Exec(`CREATE TABLE tenant_modules (
		id BIGINT PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		module_id BIGINT NOT NULL,
		is_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, module_id)
	)`).Error; err != nil {
		t.Fatalf("create tenant_modules: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func seedModule(t *testing.T, db *gorm.DB, node *snowflake.Node, name string) snowflake.ID {
	t.Helper()
	id := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO modules (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, name, now, now,
	).Error; err != nil {
		t.Fatalf("seed module %s: %v", name, err)
	}
	return id
}

func TestEnabledDisabledByDefault(t *testing.T) {
	svc, db, node := setupModuleService(t)
	ctx := context.Background()
	seedModule(t, db, node, domain.NameTransfer)
	tenantID := node.Generate()

	// No tenant_modules row means the module is off for the tenant.
	if err := svc.Enabled(ctx, authdomain.RoleAgencyAdmin, tenantID, domain.NameTransfer); err != domain.ErrModuleDisabled {
		t.Fatalf("expected ErrModuleDisabled, got %v", err)
	}
}

func TestEnabledFlagFlip(t *testing.T) {
	svc, db, node := setupModuleService(t)
	ctx := context.Background()
	seedModule(t, db, node, domain.NameTour)
	tenantID := node.Generate()

	if _, err := svc.SetTenantModule(ctx, domain.SetTenantModuleRequest{
		TenantID:  tenantID.String(),
		Module:    domain.NameTour,
		IsEnabled: true,
	}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := svc.Enabled(ctx, authdomain.RoleAgencyUser, tenantID, domain.NameTour); err != nil {
		t.Fatalf("expected enabled, got %v", err)
	}

	// Switching it off denies the very next check.
	if _, err := svc.SetTenantModule(ctx, domain.SetTenantModuleRequest{
		TenantID:  tenantID.String(),
		Module:    domain.NameTour,
		IsEnabled: false,
	}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if err := svc.Enabled(ctx, authdomain.RoleAgencyUser, tenantID, domain.NameTour); err != domain.ErrModuleDisabled {
		t.Fatalf("expected ErrModuleDisabled, got %v", err)
	}
}

func TestEnabledUnknownModule(t *testing.T) {
	svc, _, node := setupModuleService(t)

	if err := svc.Enabled(context.Background(), authdomain.RoleAgencyAdmin, node.Generate(), "charter"); err != domain.ErrModuleNotDefined {
		t.Fatalf("expected ErrModuleNotDefined, got %v", err)
	}
}

func TestEnabledSuperBypassesFlags(t *testing.T) {
	svc, _, node := setupModuleService(t)

	// Super never hits the flag table, even for modules that are off.
	if err := svc.Enabled(context.Background(), authdomain.RoleSuperAdmin, node.Generate(), domain.NameInvoice); err != nil {
		t.Fatalf("expected super bypass, got %v", err)
	}
}

func TestListFlagsCoversCatalog(t *testing.T) {
	svc, db, node := setupModuleService(t)
	ctx := context.Background()
	for _, name := range domain.KnownNames {
		seedModule(t, db, node, name)
	}
	tenantID := node.Generate()

	if _, err := svc.SetTenantModule(ctx, domain.SetTenantModuleRequest{
		TenantID:  tenantID.String(),
		Module:    domain.NameInvoice,
		IsEnabled: true,
	}); err != nil {
		t.Fatalf("enable invoice: %v", err)
	}

	flags, err := svc.ListFlags(ctx, domain.ListFlagsRequest{TenantID: tenantID})
	if err != nil {
		t.Fatalf("list flags: %v", err)
	}
	if len(flags) != len(domain.KnownNames) {
		t.Fatalf("expected %d flags, got %d", len(domain.KnownNames), len(flags))
	}
	for _, flag := range flags {
		want := flag.Name == domain.NameInvoice
		if flag.IsEnabled != want {
			t.Fatalf("flag %s: expected enabled=%v, got %v", flag.Name, want, flag.IsEnabled)
		}
	}
}
