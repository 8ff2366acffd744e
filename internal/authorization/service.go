package authorization

import (
	"context"
	"errors"
)

// Service answers whether an actor may perform an action on an object
// inside one tenant. Effective permissions are the union of what the
// actor's role implies and any active explicit grants.
type Service interface {
	Authorize(ctx context.Context, actor string, tenantID string, object string, action string) error
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)
