package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/dto"
	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/configresolver"
)

const (
	// TenantHeader names the tenant for every request. There is no
	// inferred default: an ELN core with no tenant is a misconfigured
	// deployment, not an anonymous one (spec §8 scenario 6).
	TenantHeader = "X-Tenant-ID"

	tenantKey = "tenant"
	configKey = "resolved_config"
)

// Tenant resolves the caller's tenant and its ResolvedConfig before JWTAuth
// and the handlers run, so JWTAuth and every downstream handler can rely
// on both being present. A request naming no tenant, or one the resolver
// can't resolve, never reaches a handler — this is the enforcement point
// for spec §8 scenario 6's cross-tenant isolation: two tenants can never
// share a resolved config or a storage prefix by accident.
func Tenant(resolver *configresolver.Resolver, environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := c.GetHeader(TenantHeader)
		if tenant == "" {
			abortWithError(c, http.StatusBadRequest, entity.NewError(entity.KindInvalid, "missing "+TenantHeader+" header"))
			return
		}

		cfg, err := resolver.Resolve(tenant, environment)
		if err != nil {
			abortWithError(c, dto.StatusForKind(entity.KindOf(err)), err)
			return
		}

		c.Set(tenantKey, tenant)
		c.Set(configKey, cfg)
		c.Next()
	}
}

// GetTenant retrieves the resolved tenant id from the Gin context.
func GetTenant(c *gin.Context) (string, bool) {
	if v, ok := c.Get(tenantKey); ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// GetResolvedConfig retrieves the tenant's resolved config from the Gin
// context. Only valid once Tenant has run.
func GetResolvedConfig(c *gin.Context) (*entity.ResolvedConfig, bool) {
	if v, ok := c.Get(configKey); ok {
		if cfg, ok := v.(*entity.ResolvedConfig); ok {
			return cfg, true
		}
	}
	return nil, false
}
