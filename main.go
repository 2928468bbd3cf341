package main

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"imgd/config"
	"imgd/di"
	"imgd/rest"
	"imgd/utils/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting imgd",
		"port", cfg.Server.Port,
		"images_backend", cfg.Images.Backend,
		"cache_backend", cfg.Cache.Backend)

	container, err := di.NewApplicationComponents(context.Background(), cfg)
	if err != nil {
		logger.Logger.Error("failed to build application components", "error", err)
		panic(err)
	}
	defer container.Close()

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	rest.RegisterRoutes(e, container, cfg)

	if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.Logger.Error("server stopped", "error", err)
		panic(err)
	}
}
