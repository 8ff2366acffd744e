package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	moduledomain "github.com/routewise/routewise/internal/module/domain"
	tenantdomain "github.com/routewise/routewise/internal/tenant/domain"
)

func (s *Server) ListModules(c *gin.Context) {
	resp, err := s.moduleSvc.ListModules(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTenantModules(c *gin.Context) {
	tenantID, err := parseSnowflakeID(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, tenantdomain.ErrInvalidID)
		return
	}

	resp, err := s.moduleSvc.ListFlags(c.Request.Context(), moduledomain.ListFlagsRequest{
		TenantID: tenantID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Flags may be cached briefly by clients; the gate itself always reads
	// the store.
	c.Header("Cache-Control", "private, max-age=30")
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetTenantModule(c *gin.Context) {
	var req moduledomain.SetTenantModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.TenantID = strings.TrimSpace(c.Param("id"))
	req.Module = strings.TrimSpace(c.Param("module"))

	resp, err := s.moduleSvc.SetTenantModule(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
