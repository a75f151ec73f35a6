package app

import (
	"context"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/audit"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/config"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/health"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/messaging/kafka"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/rbac"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(db)
	authRepo := auth.NewRepository(db)
	leaveRepo := leave.NewRepository(db)
	auditRepo := audit.NewRepository(db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(rbacRepo, enforcer, logger)
	if err != nil {
		return err
	}
	if err := rbacService.LoadPolicy(context.Background()); err != nil {
		// built-in policy stays active
		logger.Warn("load stored rbac policy failed", zap.Error(err))
	}

	// --- Services ---
	authService := auth.NewService(authRepo, auth.TokenConfig{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.TTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, logger)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, outboxRepo, rdb, cfg.Leave.StatisticsCacheTTL, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, auth.CookieConfig{
		Secure:     cfg.App.IsProduction(),
		AccessTTL:  cfg.JWT.TTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, logger)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb, leave.PageLimits{
		DefaultSize: cfg.Leave.DefaultPageSize,
		MaxSize:     cfg.Leave.MaxPageSize,
	}, logger)
	auditHandler := audit.NewHandler(auditRepo, logger)
	rbacHandler := rbac.NewHandler(rbacService)
	healthHandler := health.NewHandler(db, rdb, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		health.RegisterRoutes(api, healthHandler)
		auth.RegisterRoutes(api, authHandler, cfg.JWT.Secret)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb, cfg.JWT.Secret)
		audit.RegisterRoutes(api, auditHandler, rbacService, cfg.JWT.Secret)
		rbac.RegisterRoutes(api, rbacHandler, cfg.JWT.Secret)
	}

	return nil
}
