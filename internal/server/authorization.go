package server

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/authorization"
	"github.com/routewise/routewise/internal/tenantctx"
)

// authorizeTenantAction enforces the permission check for a single
// object/action pair against the tenant pinned by TenantContext.
func (s *Server) authorizeTenantAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c)
		if !ok {
			AbortWithError(c, authdomain.ErrUnauthenticated)
			return
		}

		tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrForbidden)
			return
		}

		actor := fmt.Sprintf("user:%s", identity.UserID.String())
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, tenantID.String(), object, action); err != nil {
			if errors.Is(err, authorization.ErrForbidden) && s.obsMetrics != nil {
				s.obsMetrics.RecordAuthorizationDenied(c.Request.Context(), tenantID.String(), object, action)
			}
			AbortWithError(c, err)
			return
		}

		c.Next()
	}
}
