package app

import (
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/config"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects infrastructure and registers every module on router.
func BuildApp(router *gin.Engine, cfg *config.Config) error {
	logger := zap.L().Named("app.api")

	db, err := connection.ConnectGORMWithRetry(
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.Port,
		cfg.Database.SSLMode,
		cfg.Database.MaxRetries,
	)
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Redis.MaxRetries)
	if err != nil {
		// statistics cache and idempotency are optional
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}

	return registerModules(router, cfg, db, redisClient)
}
