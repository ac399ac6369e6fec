package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/peach-brawl/internal/handler"
	"github.com/noah-isme/peach-brawl/internal/middleware"
	"github.com/noah-isme/peach-brawl/internal/repository"
	"github.com/noah-isme/peach-brawl/internal/service"
	"github.com/noah-isme/peach-brawl/pkg/cache"
	"github.com/noah-isme/peach-brawl/pkg/config"
	"github.com/noah-isme/peach-brawl/pkg/logger"
	corsmiddleware "github.com/noah-isme/peach-brawl/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/peach-brawl/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "calendar-api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Canvas.URL == "" || cfg.Canvas.Token == "" {
		logr.Fatal("CANVAS_URL and CANVAS_TOKEN are required")
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, aggregating on every request", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, "calendar-api:", logr),
		metrics, cfg.Canvas.CacheTTL, logr, redisClient != nil,
	)

	canvasRepo := repository.NewCanvasRepository(cfg.Canvas.URL, cfg.Canvas.Token, cfg.Canvas.Timeout, logr)
	if user, err := canvasRepo.CurrentUser(ctx); err != nil {
		logr.Warn("canvas credentials not verified", zap.String("url", cfg.Canvas.URL), zap.Error(err))
	} else {
		logr.Info("canvas connected", zap.String("url", cfg.Canvas.URL), zap.String("user", user.Name))
	}

	canvasSvc := service.NewCanvasService(canvasRepo, cacheSvc, metrics, logr, service.CanvasServiceConfig{
		Horizon:  cfg.Canvas.Horizon,
		CacheTTL: cfg.Canvas.CacheTTL,
	})
	canvasHandler := handler.NewCanvasHandler(canvasSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(middleware.Metrics(metrics, "/metrics"))
	r.Use(corsmiddleware.New(corsmiddleware.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Methods:        []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	r.Use(middleware.WithResponseMeta())

	r.GET("/api/all", canvasHandler.All)
	r.POST("/api/refresh", canvasHandler.Refresh)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown", zap.Error(err))
	}
}
