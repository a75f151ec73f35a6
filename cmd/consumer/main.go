package main

import (
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/app"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/config"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewDevelopment()
	if cfg.App.IsProduction() {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	if err := app.RunConsumer(cfg); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
