package rbac

import (
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware(jwtSecret))
	{
		group.GET("/me/permissions", handler.MyPermissions)
		group.POST("/enforce", handler.Enforce)
	}
}
