package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "metals-pulse"

// Health godoc
// @Summary      Health check
// @Description  Liveness probe; also reports whether LLM briefs are wired
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Briefs:    h.briefs != nil && h.briefs.Enabled(),
		Timestamp: h.timestamp(),
	})
}
