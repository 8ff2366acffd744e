package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/routewise/routewise/internal/audit/domain"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectTenant         = "tenant"
	ObjectTenantMember   = "tenant_member"
	ObjectUser           = "user"
	ObjectUserPermission = "user_permission"
	ObjectModule         = "module"
	ObjectReservation    = "reservation"
	ObjectDriver         = "driver"
	ObjectTourBooking    = "tour_booking"
	ObjectHotelBooking   = "hotel_booking"
	ObjectInvoice        = "invoice"
	ObjectAuditLog       = "audit_log"
)

const (
	ActionTenantView   = "tenant.view"
	ActionTenantUpdate = "tenant.update"

	ActionTenantMemberView   = "tenant_member.view"
	ActionTenantMemberManage = "tenant_member.manage"

	ActionUserView   = "user.view"
	ActionUserCreate = "user.create"
	ActionUserUpdate = "user.update"

	ActionUserPermissionView   = "user_permission.view"
	ActionUserPermissionGrant  = "user_permission.grant"
	ActionUserPermissionRevoke = "user_permission.revoke"

	ActionModuleView = "module.view"

	ActionReservationView         = "reservation.view"
	ActionReservationCreate       = "reservation.create"
	ActionReservationUpdate       = "reservation.update"
	ActionReservationCancel       = "reservation.cancel"
	ActionReservationAssignDriver = "reservation.assign_driver"
	ActionReservationTransition   = "reservation.transition"

	ActionDriverView   = "driver.view"
	ActionDriverCreate = "driver.create"
	ActionDriverUpdate = "driver.update"

	ActionTourBookingView   = "tour_booking.view"
	ActionTourBookingCreate = "tour_booking.create"
	ActionTourBookingUpdate = "tour_booking.update"
	ActionTourBookingCancel = "tour_booking.cancel"

	ActionHotelBookingView   = "hotel_booking.view"
	ActionHotelBookingCreate = "hotel_booking.create"
	ActionHotelBookingUpdate = "hotel_booking.update"
	ActionHotelBookingCancel = "hotel_booking.cancel"

	ActionInvoiceView     = "invoice.view"
	ActionInvoiceCreate   = "invoice.create"
	ActionInvoiceIssue    = "invoice.issue"
	ActionInvoiceMarkPaid = "invoice.mark_paid"
	ActionInvoiceVoid     = "invoice.void"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, tenantID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return ErrInvalidTenant
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(ctx, actor, tenantID)
	if err != nil {
		s.auditDenied(ctx, actorType, actorID, tenantID, object, action)
		return err
	}

	// The super role and the system actor bypass the policy table entirely.
	if roleName == roleSubject(authdomain.RoleSuperAdmin) || roleName == "role:system" {
		return nil
	}

	domain := fmt.Sprintf("tenant:%s", tenantID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}

	if !allowed {
		// Explicit grants live outside the policy table and are re-read on
		// every check so a revocation denies the very next request.
		granted, grantErr := s.hasExplicitGrant(ctx, actorID, action)
		if grantErr != nil {
			return grantErr
		}
		allowed = granted
	}

	if !allowed {
		s.auditDenied(ctx, actorType, actorID, tenantID, object, action)
		return ErrForbidden
	}

	if shouldAuditGrant(action) {
		s.auditGranted(ctx, actorType, actorID, tenantID, object, action)
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, tenantID string) (string, string, string, *string, error) {
	if actor == "system" {
		return actor, "role:system", "system", nil, nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		parsedTenantID, err := snowflake.ParseString(tenantID)
		userIDStr := userID.String()
		if err != nil || parsedTenantID == 0 {
			return actor, "", "user", &userIDStr, ErrInvalidTenant
		}
		role, err := s.roleForUser(ctx, parsedTenantID, userID)
		if err != nil {
			return actor, "", "user", &userIDStr, err
		}
		return actor, roleSubject(role), "user", &userIDStr, nil
	}
	return "", "", "", nil, ErrInvalidActor
}

// roleForUser prefers the account-level role so a platform operator keeps
// super access without a membership row, then falls back to the active
// membership role inside the tenant.
func (s *ServiceImpl) roleForUser(ctx context.Context, tenantID snowflake.ID, userID snowflake.ID) (string, error) {
	var account struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role FROM users WHERE id = ? AND is_active LIMIT 1`,
		userID,
	).Scan(&account).Error; err != nil {
		return "", err
	}
	if strings.TrimSpace(account.Role) == authdomain.RoleSuperAdmin {
		return authdomain.RoleSuperAdmin, nil
	}

	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM tenant_users
		 WHERE tenant_id = ? AND user_id = ? AND is_active
		 LIMIT 1`,
		tenantID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) hasExplicitGrant(ctx context.Context, actorID *string, action string) (bool, error) {
	if actorID == nil {
		return false, nil
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(*actorID))
	if err != nil || userID == 0 {
		return false, nil
	}

	var row struct {
		Count int64 `gorm:"column:count"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) AS count
		 FROM user_permissions
		 WHERE user_id = ? AND permission = ? AND is_active`,
		userID,
		action,
	).Scan(&row).Error; err != nil {
		return false, err
	}
	return row.Count > 0, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorType string, actorID *string, tenantID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	parsedTenantID, err := snowflake.ParseString(tenantID)
	if err != nil || parsedTenantID == 0 {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.Record(ctx, &parsedTenantID, actorType, actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object":    object,
		"action":    action,
		"actor":     actorType,
		"tenant_id": tenantID,
		"subject":   actorSubject(actorType, actorID),
	})
}

func (s *ServiceImpl) auditGranted(ctx context.Context, actorType string, actorID *string, tenantID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	parsedTenantID, err := snowflake.ParseString(tenantID)
	if err != nil || parsedTenantID == 0 {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.Record(ctx, &parsedTenantID, actorType, actorID, "authorization.granted", "authorization", &targetID, map[string]any{
		"object":    object,
		"action":    action,
		"actor":     actorType,
		"tenant_id": tenantID,
		"subject":   actorSubject(actorType, actorID),
	})
}

func actorSubject(actorType string, actorID *string) string {
	switch actorType {
	case "system":
		return "system"
	case "user":
		if actorID != nil && strings.TrimSpace(*actorID) != "" {
			return fmt.Sprintf("user:%s", strings.TrimSpace(*actorID))
		}
	}
	return ""
}

func roleSubject(role string) string {
	return fmt.Sprintf("role:%s", strings.ToLower(strings.TrimSpace(role)))
}

func shouldAuditGrant(action string) bool {
	switch action {
	case ActionInvoiceVoid, ActionUserPermissionGrant, ActionUserPermissionRevoke:
		return true
	default:
		return false
	}
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	adminSubject := roleSubject(authdomain.RoleAgencyAdmin)
	userSubject := roleSubject(authdomain.RoleAgencyUser)
	sellerSubject := roleSubject(authdomain.RoleSeller)
	operationSubject := roleSubject(authdomain.RoleOperation)
	accountantSubject := roleSubject(authdomain.RoleAccountant)

	policies := [][]string{
		// Agency admins run the whole agency.
		{adminSubject, ObjectTenant, ActionTenantView},
		{adminSubject, ObjectTenant, ActionTenantUpdate},
		{adminSubject, ObjectTenantMember, ActionTenantMemberView},
		{adminSubject, ObjectTenantMember, ActionTenantMemberManage},
		{adminSubject, ObjectUser, ActionUserView},
		{adminSubject, ObjectUser, ActionUserCreate},
		{adminSubject, ObjectUser, ActionUserUpdate},
		{adminSubject, ObjectUserPermission, ActionUserPermissionView},
		{adminSubject, ObjectUserPermission, ActionUserPermissionGrant},
		{adminSubject, ObjectUserPermission, ActionUserPermissionRevoke},
		{adminSubject, ObjectModule, ActionModuleView},
		{adminSubject, ObjectReservation, ActionReservationView},
		{adminSubject, ObjectReservation, ActionReservationCreate},
		{adminSubject, ObjectReservation, ActionReservationUpdate},
		{adminSubject, ObjectReservation, ActionReservationCancel},
		{adminSubject, ObjectReservation, ActionReservationAssignDriver},
		{adminSubject, ObjectReservation, ActionReservationTransition},
		{adminSubject, ObjectDriver, ActionDriverView},
		{adminSubject, ObjectDriver, ActionDriverCreate},
		{adminSubject, ObjectDriver, ActionDriverUpdate},
		{adminSubject, ObjectTourBooking, ActionTourBookingView},
		{adminSubject, ObjectTourBooking, ActionTourBookingCreate},
		{adminSubject, ObjectTourBooking, ActionTourBookingUpdate},
		{adminSubject, ObjectTourBooking, ActionTourBookingCancel},
		{adminSubject, ObjectHotelBooking, ActionHotelBookingView},
		{adminSubject, ObjectHotelBooking, ActionHotelBookingCreate},
		{adminSubject, ObjectHotelBooking, ActionHotelBookingUpdate},
		{adminSubject, ObjectHotelBooking, ActionHotelBookingCancel},
		{adminSubject, ObjectInvoice, ActionInvoiceView},
		{adminSubject, ObjectInvoice, ActionInvoiceCreate},
		{adminSubject, ObjectInvoice, ActionInvoiceIssue},
		{adminSubject, ObjectInvoice, ActionInvoiceMarkPaid},
		{adminSubject, ObjectInvoice, ActionInvoiceVoid},
		{adminSubject, ObjectAuditLog, ActionAuditLogView},

		// Agency users handle day-to-day bookings.
		{userSubject, ObjectTenant, ActionTenantView},
		{userSubject, ObjectModule, ActionModuleView},
		{userSubject, ObjectReservation, ActionReservationView},
		{userSubject, ObjectReservation, ActionReservationCreate},
		{userSubject, ObjectReservation, ActionReservationUpdate},
		{userSubject, ObjectDriver, ActionDriverView},
		{userSubject, ObjectTourBooking, ActionTourBookingView},
		{userSubject, ObjectTourBooking, ActionTourBookingCreate},
		{userSubject, ObjectHotelBooking, ActionHotelBookingView},
		{userSubject, ObjectHotelBooking, ActionHotelBookingCreate},

		// Sellers book, they do not operate.
		{sellerSubject, ObjectTenant, ActionTenantView},
		{sellerSubject, ObjectModule, ActionModuleView},
		{sellerSubject, ObjectReservation, ActionReservationView},
		{sellerSubject, ObjectReservation, ActionReservationCreate},
		{sellerSubject, ObjectDriver, ActionDriverView},
		{sellerSubject, ObjectTourBooking, ActionTourBookingView},
		{sellerSubject, ObjectTourBooking, ActionTourBookingCreate},
		{sellerSubject, ObjectHotelBooking, ActionHotelBookingView},
		{sellerSubject, ObjectHotelBooking, ActionHotelBookingCreate},

		// Operations dispatch drivers and move reservations along.
		{operationSubject, ObjectTenant, ActionTenantView},
		{operationSubject, ObjectModule, ActionModuleView},
		{operationSubject, ObjectReservation, ActionReservationView},
		{operationSubject, ObjectReservation, ActionReservationUpdate},
		{operationSubject, ObjectReservation, ActionReservationAssignDriver},
		{operationSubject, ObjectReservation, ActionReservationTransition},
		{operationSubject, ObjectDriver, ActionDriverView},
		{operationSubject, ObjectDriver, ActionDriverCreate},
		{operationSubject, ObjectDriver, ActionDriverUpdate},

		// Accountants see money, not dispatch.
		{accountantSubject, ObjectTenant, ActionTenantView},
		{accountantSubject, ObjectModule, ActionModuleView},
		{accountantSubject, ObjectReservation, ActionReservationView},
		{accountantSubject, ObjectTourBooking, ActionTourBookingView},
		{accountantSubject, ObjectHotelBooking, ActionHotelBookingView},
		{accountantSubject, ObjectInvoice, ActionInvoiceView},
		{accountantSubject, ObjectInvoice, ActionInvoiceCreate},
		{accountantSubject, ObjectInvoice, ActionInvoiceIssue},
		{accountantSubject, ObjectInvoice, ActionInvoiceMarkPaid},
		{accountantSubject, ObjectInvoice, ActionInvoiceVoid},
		{accountantSubject, ObjectAuditLog, ActionAuditLogView},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		rule := []string{policy[0], "*", policy[1], policy[2]}
		if _, err := enforcer.AddPolicy(rule); err != nil {
			return err
		}
	}
	return nil
}
