package health

import (
	"context"
	"net/http"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDisabled = "disabled"
)

const checkTimeout = 2 * time.Second

type Services struct {
	API      string `json:"api"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

type Report struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  Services  `json:"services"`
}

type Handler struct {
	db     *gorm.DB
	rdb    *redis.Client
	now    func() time.Time
	logger *zap.Logger
}

// NewHandler checks db on every call and rdb when it is non-nil.
func NewHandler(db *gorm.DB, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("health.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("health.handler")
	}
	return &Handler{db: db, rdb: rdb, now: time.Now, logger: l}
}

func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	report := Report{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Services:  Services{API: StatusUp, Database: StatusUp, Redis: StatusDisabled},
	}

	if err := h.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		report.Services.Database = StatusDown
		report.Status = "unhealthy"
	}

	if h.rdb != nil {
		report.Services.Redis = StatusUp
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			h.logger.Error("redis health check failed", zap.Error(err))
			report.Services.Redis = StatusDown
			report.Status = "unhealthy"
		}
	}

	if report.Status != "healthy" {
		response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "service unavailable", report)
		return
	}
	response.Success(c, http.StatusOK, report, nil)
}
