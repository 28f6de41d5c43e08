package api

import (
	"net/http"

	"searchbot/chat"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes registers the health check endpoint.
func RegisterHealthRoutes(r *gin.Engine, svc *chat.Service) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"sessions": svc.Sessions().Len(),
		})
	})
}
