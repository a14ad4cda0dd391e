package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes initialises the application routes.
func SetupRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		RegisterAPIRoutes(api)
	}
}
