package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthController serves the unauthenticated liveness/readiness probes.
type HealthController struct{}

// NewHealthController builds a HealthController.
func NewHealthController() *HealthController {
	return &HealthController{}
}

// Health reports the process is up.
func (h *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports the process is ready to serve traffic. There is no
// external dependency to probe here — object storage and the identity
// provider are both reached lazily, per request, on the tenant that
// requests them.
func (h *HealthController) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
