package main

import (
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/app"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/bootstrap"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/config"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/middleware"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
		middleware.RequestID(),
		middleware.ContextLogger(logger),
	)

	// build dependency + routes
	if err := app.BuildApp(r, cfg); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         cfg.HTTP.Port,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
		bootstrap.NewStdoutAuditLogger(logger),
	)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.App.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
