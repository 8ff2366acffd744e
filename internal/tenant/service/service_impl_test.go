package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/tenant/domain"
	"github.com/routewise/routewise/internal/tenant/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTenantService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
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

	if err := db.Exec(`CREATE TABLE tenants (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		locale TEXT,
		branding TEXT NOT NULL DEFAULT '{}',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create tenants: %v", err)
	}
	if err := db.Exec(`CREATE TABLE tenant_users (
		id BIGINT PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, user_id)
	)`).Error; err != nil {
		t.Fatalf("create tenant_users: %v", err)
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

func TestCreateTenantSlugTaken(t *testing.T) {
	svc, _, _ := setupTenantService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Island Rides"}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Island Rides"}); err != domain.ErrSlugTaken {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestResolveTargetSuperExplicit(t *testing.T) {
	svc, _, _ := setupTenantService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "First Agency"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Second Agency"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, err := svc.ResolveTarget(ctx, authdomain.RoleSuperAdmin, nil, second.ID.String())
	if err != nil {
		t.Fatalf("resolve explicit: %v", err)
	}
	if got != second.ID {
		t.Fatalf("expected tenant %s, got %s", second.ID, got)
	}

	// Without an explicit tenant the super role lands on the first active one.
	got, err = svc.ResolveTarget(ctx, authdomain.RoleSuperAdmin, nil, "")
	if err != nil {
		t.Fatalf("resolve fallback: %v", err)
	}
	if got != first.ID {
		t.Fatalf("expected tenant %s, got %s", first.ID, got)
	}
}

func TestResolveTargetSuperUnknownTenant(t *testing.T) {
	svc, _, node := setupTenantService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Only Agency"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ResolveTarget(ctx, authdomain.RoleSuperAdmin, nil, node.Generate().String()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveTargetMemberIgnoresForeignTenant(t *testing.T) {
	svc, _, _ := setupTenantService(t)
	ctx := context.Background()

	home, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Home Agency"})
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	foreign, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Foreign Agency"})
	if err != nil {
		t.Fatalf("create foreign: %v", err)
	}

	memberships := []snowflake.ID{home.ID}

	// Asking for a tenant outside your memberships falls back to your own.
	got, err := svc.ResolveTarget(ctx, authdomain.RoleAgencyUser, memberships, foreign.ID.String())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != home.ID {
		t.Fatalf("expected tenant %s, got %s", home.ID, got)
	}

	// Asking for your own tenant explicitly is honoured.
	got, err = svc.ResolveTarget(ctx, authdomain.RoleAgencyUser, memberships, home.ID.String())
	if err != nil {
		t.Fatalf("resolve explicit: %v", err)
	}
	if got != home.ID {
		t.Fatalf("expected tenant %s, got %s", home.ID, got)
	}
}

func TestResolveTargetNoMembership(t *testing.T) {
	svc, _, _ := setupTenantService(t)

	if _, err := svc.ResolveTarget(context.Background(), authdomain.RoleAgencyUser, nil, ""); err != domain.ErrNoTenant {
		t.Fatalf("expected ErrNoTenant, got %v", err)
	}
}

func TestAddMemberDuplicate(t *testing.T) {
	svc, _, node := setupTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Member Agency"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	userID := node.Generate()

	if _, err := svc.AddMember(ctx, domain.AddMemberRequest{
		TenantID: tenant.ID.String(),
		UserID:   userID.String(),
		Role:     authdomain.RoleAgencyUser,
	}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if _, err := svc.AddMember(ctx, domain.AddMemberRequest{
		TenantID: tenant.ID.String(),
		UserID:   userID.String(),
		Role:     authdomain.RoleSeller,
	}); err != domain.ErrMemberExists {
		t.Fatalf("expected ErrMemberExists, got %v", err)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	svc, _, node := setupTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Role Agency"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	userID := node.Generate()

	if _, err := svc.AddMember(ctx, domain.AddMemberRequest{
		TenantID: tenant.ID.String(),
		UserID:   userID.String(),
		Role:     authdomain.RoleAgencyUser,
	}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	role := authdomain.RoleOperation
	updated, err := svc.UpdateMember(ctx, domain.UpdateMemberRequest{
		TenantID: tenant.ID.String(),
		UserID:   userID.String(),
		Role:     &role,
	})
	if err != nil {
		t.Fatalf("update member: %v", err)
	}
	if updated.Role != authdomain.RoleOperation {
		t.Fatalf("expected role %s, got %s", authdomain.RoleOperation, updated.Role)
	}

	bogus := "DISPATCHER"
	if _, err := svc.UpdateMember(ctx, domain.UpdateMemberRequest{
		TenantID: tenant.ID.String(),
		UserID:   userID.String(),
		Role:     &bogus,
	}); err != domain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}
