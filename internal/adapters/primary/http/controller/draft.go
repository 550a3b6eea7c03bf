package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/dto"
	"github.com/elnvault/eln-core/internal/adapters/primary/http/middleware"
	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
	"github.com/elnvault/eln-core/internal/core/service/sop"
)

// DraftController serves CRUD over in-progress ELNs (spec §4.6, §6).
type DraftController struct {
	loader *sop.Loader
	drafts *draftstore.Store
}

// NewDraftController builds a DraftController.
func NewDraftController(loader *sop.Loader, drafts *draftstore.Store) *DraftController {
	return &DraftController{loader: loader, drafts: drafts}
}

// Save serves POST /api/sops/:sopId/drafts.
func (dc *DraftController) Save(c *gin.Context) {
	tenant, _ := middleware.GetTenant(c)
	sopID := c.Param("sopId")
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}

	var req dto.DraftSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, entity.Wrap(entity.KindInvalid, "malformed request body", err))
		return
	}

	desc, err := dc.loader.Load(c.Request.Context(), tenant, sopID)
	if err != nil {
		HandleError(c, err)
		return
	}

	variables := sop.Variables(desc, req.FormData)
	draft, err := dc.drafts.Save(c.Request.Context(), user, draftstore.SaveInput{
		Tenant:     tenant,
		SOPID:      sopID,
		SessionID:  req.SessionID,
		FormData:   req.FormData,
		Completion: req.Completion,
		Title:      req.Title,
		Variables:  variables,
		FieldIDs:   desc.FilenameComponentOrder(),
		DraftID:    req.DraftID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// Get serves GET /api/sops/:sopId/drafts/:draftId.
func (dc *DraftController) Get(c *gin.Context) {
	tenant, _ := middleware.GetTenant(c)
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}
	draft, err := dc.drafts.Get(c.Request.Context(), user, tenant, c.Param("sopId"), c.Param("draftId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// List serves GET /api/sops/:sopId/drafts.
func (dc *DraftController) List(c *gin.Context) {
	tenant, _ := middleware.GetTenant(c)
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}
	drafts, err := dc.drafts.List(c.Request.Context(), user, tenant, c.Param("sopId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

// Delete serves DELETE /api/sops/:sopId/drafts/:draftId.
func (dc *DraftController) Delete(c *gin.Context) {
	tenant, _ := middleware.GetTenant(c)
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}
	if err := dc.drafts.Delete(c.Request.Context(), user, tenant, c.Param("sopId"), c.Param("draftId")); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
