package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/middleware"
	"github.com/elnvault/eln-core/internal/core/entity"
)

// ConfigController exposes the tenant's resolved configuration (spec §4.1,
// §6). The resolved config itself is produced once per request by the
// Tenant middleware; this controller only shapes the response.
type ConfigController struct{}

// NewConfigController builds a ConfigController.
func NewConfigController() *ConfigController {
	return &ConfigController{}
}

// Runtime serves GET /api/config/runtime: identity-provider coordinates
// only, reachable before the caller has a token (a client needs this to
// know where to obtain one).
func (cc *ConfigController) Runtime(c *gin.Context) {
	cfg, ok := middleware.GetResolvedConfig(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindIO, "tenant config missing from request context"))
		return
	}
	c.JSON(http.StatusOK, cfg.PublicSubset())
}

// Private serves GET /api/config (authenticated): the full merged config,
// minus storage_root and identity_provider internals unless the caller is
// an admin.
func (cc *ConfigController) Private(c *gin.Context) {
	cfg, ok := middleware.GetResolvedConfig(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindIO, "tenant config missing from request context"))
		return
	}
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}
	c.JSON(http.StatusOK, cfg.PrivateSubset(user.IsAdmin))
}
