package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/dto"
)

// abortWithError aborts the request with the standard error envelope,
// shared by every middleware that can fail before a controller runs.
func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(err))
}
