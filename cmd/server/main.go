package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/nystar1/midnight/internal/bootstrap"
	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/infra/cache"
	"github.com/nystar1/midnight/internal/infra/db"
	mq "github.com/nystar1/midnight/internal/infra/queue"
	"github.com/nystar1/midnight/internal/modules/handler"
	"github.com/nystar1/midnight/internal/router"
	"github.com/nystar1/midnight/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Telemetry.Enabled {
		if _, err := telemetry.SetupTracing(cfg); err != nil {
			log.Fatal("failed to set up tracing", zap.Error(err))
		}
		if _, err := telemetry.SetupMetrics(cfg); err != nil {
			log.Fatal("failed to set up metrics", zap.Error(err))
		}
		if err := telemetry.InitReviewMetrics(); err != nil {
			log.Fatal("failed to init review metrics", zap.Error(err))
		}
	}

	gormDB := do.MustInvoke[*gorm.DB](inj)
	if cfg.Telemetry.Enabled {
		if err := db.RegisterOpenTelemetryPlugin(gormDB); err != nil {
			log.Warn("failed to register gorm otel plugin", zap.Error(err))
		}
	}

	rdb := do.MustInvoke[*redis.Client](inj)
	if cfg.Telemetry.Enabled {
		if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
			log.Warn("failed to register redis otel plugin", zap.Error(err))
		}
	}

	r := router.NewRouter(router.RouterDeps{
		Config:             cfg,
		Log:                log,
		SubmissionHandler:  do.MustInvoke[*handler.SubmissionHandler](inj),
		ProjectHandler:     do.MustInvoke[*handler.ProjectHandler](inj),
		EditRequestHandler: do.MustInvoke[*handler.EditRequestHandler](inj),
		StatsHandler:       do.MustInvoke[*handler.StatsHandler](inj),
	})

	srv := &http.Server{
		Addr:    cfg.App.Addr,
		Handler: r,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.App.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	if publisher, err := do.Invoke[*mq.Publisher](inj); err == nil {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close publisher", zap.Error(err))
		}
	}
	if err := cache.Close(rdb); err != nil {
		log.Warn("failed to close redis", zap.Error(err))
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Warn("failed to shut down tracing", zap.Error(err))
	}
	if err := telemetry.ShutdownMetrics(ctx); err != nil {
		log.Warn("failed to shut down metrics", zap.Error(err))
	}

	log.Info("server stopped")
}
