package audit

import (
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService, jwtSecret string) {
	r.GET("/leaves/:id/audit",
		middleware.AuthMiddleware(jwtSecret),
		middleware.RBACAuthorize(rbacService, "leave", "read_all"),
		handler.LeaveTrail,
	)
}
