// Package controller holds the gin handlers for the ELN HTTP surface
// (spec §6). Handlers stay thin: parse request, call a core service,
// map the result or error, respond.
package controller

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/dto"
	"github.com/elnvault/eln-core/internal/core/entity"
)

// respondError sends an error response, logging anything that maps to a
// 5xx so operators see it even though the client never gets the cause.
func respondError(ctx *gin.Context, err error) {
	status := dto.StatusForKind(entity.KindOf(err))
	if status >= 500 {
		slog.ErrorContext(ctx.Request.Context(), "unhandled error",
			slog.String("error", err.Error()),
			slog.String("path", ctx.Request.URL.Path))
	}
	ctx.JSON(status, dto.NewErrorResponse(err))
}

// HandleError maps a domain error to its HTTP response. Every core
// component returns *entity.DomainError, so there is exactly one case to
// switch on: the Kind. Anything that isn't a DomainError is treated as an
// unclassified 500, same as entity.KindOf's own default.
func HandleError(ctx *gin.Context, err error) {
	respondError(ctx, err)
}
