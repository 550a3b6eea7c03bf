package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/dto"
	"github.com/elnvault/eln-core/internal/adapters/primary/http/middleware"
	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/sop"
)

// SOPController serves the SOP schema a tenant's drafts and submissions
// are validated and filename-encoded against.
type SOPController struct {
	loader *sop.Loader
}

// NewSOPController builds a SOPController.
func NewSOPController(loader *sop.Loader) *SOPController {
	return &SOPController{loader: loader}
}

// List serves GET /api/v1/sops/list.
func (sc *SOPController) List(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindIO, "tenant missing from request context"))
		return
	}

	items, err := sc.loader.ListMetadata(c.Request.Context(), tenant)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSOPListResponse(items))
}

// Get serves GET /api/sops/:sopId.
func (sc *SOPController) Get(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindIO, "tenant missing from request context"))
		return
	}
	sopID := c.Param("sopId")

	desc, err := sc.loader.Load(c.Request.Context(), tenant, sopID)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSOPResponse(desc))
}
