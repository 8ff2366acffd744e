package authorization

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthorization(t *testing.T) (Service, *gorm.DB, *snowflake.Node) {
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
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`).Error; err != nil {
		t.Fatalf("create users: %v", err)
	}
	if err := db.Exec(`CREATE TABLE tenant_users (
		id BIGINT PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`).Error; err != nil {
		t.Fatalf("create tenant_users: %v", err)
	}
	if err := db.Exec(`CREATE TABLE user_permissions (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		permission TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		granted_by BIGINT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error; err != nil {
		t.Fatalf("create user_permissions: %v", err)
	}

	enforcer, err := NewEnforcer(db)
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
	return svc, db, node
}

func seedMember(t *testing.T, db *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, accountRole, memberRole string) snowflake.ID {
	t.Helper()
	userID := node.Generate()
	if err := db.Exec(
		`INSERT INTO users (id, email, role, is_active) VALUES (?, ?, ?, TRUE)`,
		userID, fmt.Sprintf("%s@agency.test", userID), accountRole,
	).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if memberRole != "" {
		if err := db.Exec(
			`INSERT INTO tenant_users (id, tenant_id, user_id, role, is_active) VALUES (?, ?, ?, ?, TRUE)`,
			node.Generate(), tenantID, userID, memberRole,
		).Error; err != nil {
			t.Fatalf("seed membership: %v", err)
		}
	}
	return userID
}

func TestAuthorizeRolePolicy(t *testing.T) {
	svc, db, node := setupAuthorization(t)
	ctx := context.Background()
	tenantID := node.Generate()

	seller := seedMember(t, db, node, tenantID, authdomain.RoleAgencyUser, authdomain.RoleSeller)
	actor := fmt.Sprintf("user:%s", seller)

	if err := svc.Authorize(ctx, actor, tenantID.String(), ObjectReservation, ActionReservationCreate); err != nil {
		t.Fatalf("seller should create reservations: %v", err)
	}
	if err := svc.Authorize(ctx, actor, tenantID.String(), ObjectReservation, ActionReservationAssignDriver); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Authorize(ctx, actor, tenantID.String(), ObjectInvoice, ActionInvoiceIssue); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizeSuperBypass(t *testing.T) {
	svc, db, node := setupAuthorization(t)
	ctx := context.Background()
	tenantID := node.Generate()

	super := seedMember(t, db, node, tenantID, authdomain.RoleSuperAdmin, "")
	actor := fmt.Sprintf("user:%s", super)

	if err := svc.Authorize(ctx, actor, tenantID.String(), ObjectInvoice, ActionInvoiceVoid); err != nil {
		t.Fatalf("super should bypass policy: %v", err)
	}
}

func TestAuthorizeSystemActor(t *testing.T) {
	svc, _, node := setupAuthorization(t)

	if err := svc.Authorize(context.Background(), "system", node.Generate().String(), ObjectReservation, ActionReservationUpdate); err != nil {
		t.Fatalf("system actor should be allowed: %v", err)
	}
}

func TestAuthorizeExplicitGrantUnion(t *testing.T) {
	svc, db, node := setupAuthorization(t)
	ctx := context.Background()
	tenantID := node.Generate()

	seller := seedMember(t, db, node, tenantID, authdomain.RoleAgencyUser, authdomain.RoleSeller)
	actor := fmt.Sprintf("user:%s", seller)

	if err := svc.Authorize(ctx, actor, tenantID.String(), ObjectInvoice, ActionInvoiceIssue); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden before grant, got %v", err)
	}

	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO user_permissions (id, user_id, permission, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, TRUE, ?, ?)`,
		node.Generate(), seller, ActionInvoiceIssue, now, now,
	).Error; err != nil {
		t.Fatalf("seed grant: %v", err)
	}

	// A grant unions with the role on the next check, no restart needed.
	if err := svc.Authorize(ctx, actor, tenantID.String(), ObjectInvoice, ActionInvoiceIssue); err != nil {
		t.Fatalf("expected grant to allow, got %v", err)
	}

	// Revocation denies the very next check.
	if err := db.Exec(
		`UPDATE user_permissions SET is_active = FALSE WHERE user_id = ? AND permission = ?`,
		seller, ActionInvoiceIssue,
	).Error; err != nil {
		t.Fatalf("revoke grant: %v", err)
	}
	if err := svc.Authorize(ctx, actor, tenantID.String(), ObjectInvoice, ActionInvoiceIssue); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden after revoke, got %v", err)
	}
}

func TestAuthorizeNonMemberDenied(t *testing.T) {
	svc, db, node := setupAuthorization(t)
	ctx := context.Background()
	tenantID := node.Generate()

	stranger := seedMember(t, db, node, node.Generate(), authdomain.RoleAgencyUser, authdomain.RoleAgencyAdmin)
	actor := fmt.Sprintf("user:%s", stranger)

	if err := svc.Authorize(ctx, actor, tenantID.String(), ObjectReservation, ActionReservationView); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-member, got %v", err)
	}
}

func TestAuthorizeBadActor(t *testing.T) {
	svc, _, node := setupAuthorization(t)
	ctx := context.Background()

	if err := svc.Authorize(ctx, "robot:7", node.Generate().String(), ObjectTenant, ActionTenantView); err != ErrInvalidActor {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
	if err := svc.Authorize(ctx, "", node.Generate().String(), ObjectTenant, ActionTenantView); err != ErrInvalidActor {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
}
