package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/pkg/db/pagination"
)

type CreateTenantRequest struct {
	Name     string         `json:"name"`
	Locale   string         `json:"locale"`
	Branding map[string]any `json:"branding"`
}

type UpdateTenantRequest struct {
	ID       string
	Name     *string         `json:"name"`
	Locale   *string         `json:"locale"`
	Branding *map[string]any `json:"branding"`
	IsActive *bool           `json:"is_active"`
}

type GetTenantRequest struct {
	ID string
}

type ListTenantRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	IsActive  *bool
}

type ListTenantFilter struct {
	Name     string
	IsActive *bool
}

type ListTenantResponse struct {
	pagination.PageInfo
	Tenants []Tenant `json:"tenants"`
}

type AddMemberRequest struct {
	TenantID string
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
}

type UpdateMemberRequest struct {
	TenantID string
	UserID   string
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

type ListMembersRequest struct {
	TenantID string
}

type Service interface {
	Create(context.Context, CreateTenantRequest) (Tenant, error)
	Update(context.Context, UpdateTenantRequest) (Tenant, error)
	GetByID(context.Context, GetTenantRequest) (Tenant, error)
	List(context.Context, ListTenantRequest) (ListTenantResponse, error)

	AddMember(context.Context, AddMemberRequest) (TenantUser, error)
	UpdateMember(context.Context, UpdateMemberRequest) (TenantUser, error)
	ListMembers(context.Context, ListMembersRequest) ([]TenantUser, error)

	// ResolveTarget picks the tenant a request operates on. Super-role callers
	// may name a tenant explicitly; everyone else gets their first active
	// membership. The same inputs always yield the same tenant.
	ResolveTarget(ctx context.Context, role string, tenantIDs []snowflake.ID, explicitTenantID string) (snowflake.ID, error)
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrNotFound      = errors.New("not_found")
	ErrNoTenant      = errors.New("no_tenant")
	ErrSlugTaken     = errors.New("slug_taken")
	ErrMemberExists  = errors.New("member_exists")
	ErrMemberMissing = errors.New("member_missing")
)
