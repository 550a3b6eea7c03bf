package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/dto"
	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/authvalidator"
)

const userKey = "user"

// JWTAuth validates the bearer token against the caller's tenant's
// identity provider and stores the resulting *entity.User in context. It
// must run after Tenant, since which provider validates the token (and
// which group-to-permission map expands its claims) is itself
// tenant-scoped (spec §4.1, §4.2, §4.3).
func JWTAuth(providers *authvalidator.ProviderCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		cfg, ok := GetResolvedConfig(c)
		if !ok {
			abortWithError(c, http.StatusInternalServerError, entity.NewError(entity.KindIO, "tenant config missing from request context"))
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, entity.NewError(entity.KindUnauthenticated, "missing authorization header"))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, http.StatusUnauthorized, entity.NewError(entity.KindUnauthenticated, "malformed authorization header"))
			return
		}

		provider, err := providers.Get(c.Request.Context(), cfg.IdentityProvider)
		if err != nil {
			abortWithError(c, http.StatusBadGateway, entity.Wrap(entity.KindProviderUnreachable, "identity provider unavailable", err))
			return
		}

		validator := authvalidator.New(provider, cfg.ExpandGroups)
		user, err := validator.Validate(c.Request.Context(), parts[1])
		if err != nil {
			abortWithError(c, dto.StatusForKind(entity.KindOf(err)), err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// GetUser retrieves the authenticated user from the Gin context. Only
// valid once JWTAuth has run.
func GetUser(c *gin.Context) (*entity.User, bool) {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u, true
		}
	}
	return nil, false
}
