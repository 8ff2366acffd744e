package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/auth/password"
	"github.com/routewise/routewise/internal/auth/repository"
	"github.com/routewise/routewise/internal/auth/token"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
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

	if err := db.Exec(`CREATE TABLE users (
		id BIGINT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create users: %v", err)
	}
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
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create tenant_users: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	tokens, err := token.NewManager("test-secret", time.Hour, "")
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Tokens: tokens,
	})
	return svc, db, node
}

func seedUser(t *testing.T, db *gorm.DB, node *snowflake.Node, email, plain, role string, active bool) snowflake.ID {
	t.Helper()
	hashed, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	id := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO users (id, email, display_name, password_hash, role, is_active, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, '{}', ?, ?)`,
		id, email, "Test User", hashed, role, active, now, now,
	).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func TestLoginAndResolve(t *testing.T) {
	svc, db, node := setupAuthService(t)
	ctx := context.Background()
	userID := seedUser(t, db, node, "ops@agency.test", "s3cret", domain.RoleAgencyAdmin, true)

	tenantID := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO tenants (id, name, slug, branding, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, '{}', TRUE, ?, ?)`,
		tenantID, "Test Agency", "test-agency", now, now,
	).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO tenant_users (id, tenant_id, user_id, role, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, TRUE, ?, ?)`,
		node.Generate(), tenantID, userID, domain.RoleAgencyAdmin, now, now,
	).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "Ops@Agency.Test", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.User.PasswordHash != "" {
		t.Fatal("password hash leaked in login response")
	}

	identity, err := svc.Resolve(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, identity.UserID)
	}
	if identity.Role != domain.RoleAgencyAdmin {
		t.Fatalf("expected role %s, got %s", domain.RoleAgencyAdmin, identity.Role)
	}
	if len(identity.TenantIDs) != 1 || identity.TenantIDs[0] != tenantID {
		t.Fatalf("expected membership %s, got %v", tenantID, identity.TenantIDs)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, db, node := setupAuthService(t)
	seedUser(t, db, node, "seller@agency.test", "right", domain.RoleSeller, true)

	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "seller@agency.test",
		Password: "wrong",
	}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, db, node := setupAuthService(t)
	seedUser(t, db, node, "gone@agency.test", "s3cret", domain.RoleAgencyUser, false)

	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "gone@agency.test",
		Password: "s3cret",
	}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResolveDeactivatedAfterIssue(t *testing.T) {
	svc, db, node := setupAuthService(t)
	ctx := context.Background()
	userID := seedUser(t, db, node, "brief@agency.test", "s3cret", domain.RoleAgencyUser, true)

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "brief@agency.test", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Deactivation invalidates still-valid tokens on the next resolve.
	if err := db.Exec(`UPDATE users SET is_active = FALSE WHERE id = ?`, userID).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Resolve(ctx, resp.AccessToken); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveGarbageToken(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	if _, err := svc.Resolve(context.Background(), "not-a-token"); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveRoleChangeWinsOverToken(t *testing.T) {
	svc, db, node := setupAuthService(t)
	ctx := context.Background()
	userID := seedUser(t, db, node, "promoted@agency.test", "s3cret", domain.RoleAgencyUser, true)

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "promoted@agency.test", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := db.Exec(`UPDATE users SET role = ? WHERE id = ?`, domain.RoleAgencyAdmin, userID).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}

	identity, err := svc.Resolve(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity.Role != domain.RoleAgencyAdmin {
		t.Fatalf("expected refreshed role %s, got %s", domain.RoleAgencyAdmin, identity.Role)
	}
}
