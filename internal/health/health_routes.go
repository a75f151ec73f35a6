package health

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the unauthenticated liveness check.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/health", handler.Check)
}
