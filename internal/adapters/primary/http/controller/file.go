package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/middleware"
	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/filestager"
)

// FileController serves staged-attachment upload/delete for an in-progress
// draft (spec §4.7, §6).
type FileController struct {
	stager *filestager.Stager
}

// NewFileController builds a FileController.
func NewFileController(stager *filestager.Stager) *FileController {
	return &FileController{stager: stager}
}

// Upload serves POST /api/sops/:sopId/drafts/:draftId/files, a multipart
// form with a single "file" part and a "fieldId" value naming which SOP
// field the attachment belongs to.
func (fc *FileController) Upload(c *gin.Context) {
	tenant, _ := middleware.GetTenant(c)
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}
	cfg, ok := middleware.GetResolvedConfig(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindIO, "tenant config missing from request context"))
		return
	}

	fieldID := c.PostForm("fieldId")
	if fieldID == "" {
		HandleError(c, entity.NewError(entity.KindInvalid, "fieldId is required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		HandleError(c, entity.Wrap(entity.KindInvalid, "missing file part", err))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		HandleError(c, entity.Wrap(entity.KindIO, "opening uploaded file", err))
		return
	}
	defer f.Close()

	sf, err := fc.stager.Upload(c.Request.Context(), user, cfg.SizePolicy, filestager.UploadInput{
		Tenant:       tenant,
		SOPID:        c.Param("sopId"),
		DraftID:      c.Param("draftId"),
		FieldID:      fieldID,
		Stream:       f,
		OriginalName: fileHeader.Filename,
		SizeHint:     fileHeader.Size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sf)
}

// Delete serves DELETE /api/sops/:sopId/drafts/:draftId/files/:tempId.
func (fc *FileController) Delete(c *gin.Context) {
	tenant, _ := middleware.GetTenant(c)
	user, ok := middleware.GetUser(c)
	if !ok {
		HandleError(c, entity.NewError(entity.KindUnauthenticated, "no authenticated user"))
		return
	}
	err := fc.stager.Delete(c.Request.Context(), user, tenant, c.Param("sopId"), c.Param("draftId"), c.Param("tempId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
