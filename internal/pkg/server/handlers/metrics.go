package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleMetrics handles /metrics endpoint
func (h *Handlers) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Tracker().GetMetrics())
}
