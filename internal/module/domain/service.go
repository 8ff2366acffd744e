package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type SetTenantModuleRequest struct {
	TenantID  string
	Module    string `json:"module"`
	IsEnabled bool   `json:"is_enabled"`
}

type ListFlagsRequest struct {
	TenantID snowflake.ID
}

type Service interface {
	// Enabled reports whether the named module may be used by the given role
	// on the given tenant. The store is consulted on every call so switching
	// a module off takes effect on the next request.
	Enabled(ctx context.Context, role string, tenantID snowflake.ID, moduleName string) error
	ListFlags(context.Context, ListFlagsRequest) ([]TenantModuleFlag, error)
	SetTenantModule(context.Context, SetTenantModuleRequest) (TenantModule, error)
	ListModules(ctx context.Context) ([]Module, error)
}

var (
	// ErrModuleNotDefined means the module name itself is unknown to the
	// platform. That is a configuration defect, not an access denial.
	ErrModuleNotDefined = errors.New("module_not_defined")
	ErrModuleDisabled   = errors.New("module_disabled")
	ErrInvalidID        = errors.New("invalid_id")
)
