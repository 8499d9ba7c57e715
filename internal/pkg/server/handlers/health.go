package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlePing handles /ping endpoint
func HandlePing(c *gin.Context) {
	c.Data(http.StatusOK, textPlain, []byte("pong\n"))
}

// HandleHealth handles /health endpoint
func HandleHealth(c *gin.Context) {
	c.Data(http.StatusOK, textPlain, []byte("ok\n"))
}
