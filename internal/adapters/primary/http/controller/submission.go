package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/dto"
	"github.com/elnvault/eln-core/internal/adapters/primary/http/middleware"
	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
	"github.com/elnvault/eln-core/internal/core/service/sop"
	"github.com/elnvault/eln-core/internal/core/service/submission"
)

// SubmissionController promotes a draft to an immutable submission and
// retries any attachments a prior submit left pending (spec §4.8, §6, §7).
type SubmissionController struct {
	loader  *sop.Loader
	drafts  *draftstore.Store
	engine  *submission.Engine
}

// NewSubmissionController builds a SubmissionController.
func NewSubmissionController(loader *sop.Loader, drafts *draftstore.Store, engine *submission.Engine) *SubmissionController {
	return &SubmissionController{loader: loader, drafts: drafts, engine: engine}
}

// Submit serves POST /api/sops/:sopId/drafts/:draftId/submit. The draft
// itself is left untouched — the spec never has the Submission Engine
// mutate or delete it (a retry of Submit after a transient failure must
// see the same draft it saw the first time).
func (sc *SubmissionController) Submit(c *gin.Context) {
	tenant, _ := middleware.GetTenant(c)
	sopID := c.Param("sopId")
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}

	desc, err := sc.loader.Load(c.Request.Context(), tenant, sopID)
	if err != nil {
		HandleError(c, err)
		return
	}
	draft, err := sc.drafts.Get(c.Request.Context(), user, tenant, sopID, c.Param("draftId"))
	if err != nil {
		HandleError(c, err)
		return
	}

	res, err := sc.engine.Submit(c.Request.Context(), user, desc, tenant, draft)
	if err != nil {
		HandleError(c, err)
		return
	}

	status := http.StatusCreated
	if len(res.PendingAttachments) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, dto.SubmitResponse{Submission: res.Submission, PendingAttachments: res.PendingAttachments})
}

// AttachRetry serves POST /api/sops/:sopId/drafts/:draftId/submit/retry,
// re-attempting the attachment moves named in the request body.
func (sc *SubmissionController) AttachRetry(c *gin.Context) {
	tenant, _ := middleware.GetTenant(c)
	sopID := c.Param("sopId")
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}

	var req dto.AttachRetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, entity.Wrap(entity.KindInvalid, "malformed request body", err))
		return
	}

	draft, err := sc.drafts.Get(c.Request.Context(), user, tenant, sopID, c.Param("draftId"))
	if err != nil {
		HandleError(c, err)
		return
	}

	pending := sc.engine.AttachToELN(c.Request.Context(), tenant, sopID, draft, req.TempIDs)
	c.JSON(http.StatusOK, gin.H{"pendingAttachments": pending})
}
