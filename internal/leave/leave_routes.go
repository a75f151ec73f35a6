package leave

import (
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	jwtSecret string,
) {
	auth := middleware.AuthMiddleware(jwtSecret)
	readAll := middleware.RBACAuthorize(rbacService, "leave", "read_all")
	approve := middleware.RBACAuthorize(rbacService, "leave", "approve")

	leaves := r.Group("/leaves")
	leaves.Use(auth)
	{
		apply := []gin.HandlerFunc{
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			middleware.RateLimitByUser(rate.Limit(1), 5),
		}
		if rdb != nil {
			apply = append(apply, middleware.Idempotency(rdb))
		}
		leaves.POST("/apply", append(apply, handler.Apply)...)

		leaves.GET("/my-balances", handler.MyBalances)
		leaves.GET("/types", handler.LeaveTypes)
		leaves.PATCH("/:id/cancel", handler.Cancel)

		leaves.GET("", readAll, handler.List)
		leaves.GET("/statistics", readAll, handler.Statistics)
		leaves.GET("/calendar", readAll, handler.Calendar)
		leaves.GET("/:id", handler.GetByID)
		leaves.PATCH("/:id/status", approve, handler.UpdateStatus)
	}

	r.GET("/employees/:employeeId/leave-balances", auth, readAll, handler.EmployeeBalances)
}
