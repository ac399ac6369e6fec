package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/peach-brawl/api/swagger"
	"github.com/noah-isme/peach-brawl/internal/handler"
	"github.com/noah-isme/peach-brawl/internal/middleware"
	"github.com/noah-isme/peach-brawl/internal/repository"
	"github.com/noah-isme/peach-brawl/internal/service"
	"github.com/noah-isme/peach-brawl/pkg/cache"
	"github.com/noah-isme/peach-brawl/pkg/config"
	"github.com/noah-isme/peach-brawl/pkg/logger"
	corsmiddleware "github.com/noah-isme/peach-brawl/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/peach-brawl/pkg/middleware/requestid"
	"github.com/noah-isme/peach-brawl/web"
)

// @title Peach Brawl Dashboard
// @version 1.0.0
// @description Course assignments and schedule dashboard kept in sync with the calendar API.
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "dashboard")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, serving from memory only", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, "peach-brawl:", logr),
		metrics, cfg.Redis.TTL, logr, redisClient != nil,
	)

	dates, err := service.NewDueDateFormatter(cfg.Display.TimeZone, cfg.Display.DateLayout)
	if err != nil {
		logr.Warn("unknown display time zone, using UTC", zap.String("zone", cfg.Display.TimeZone), zap.Error(err))
	}

	display := service.NewDisplayService(repository.NewRegionRepository(), cacheSvc, cfg.Redis.TTL, logr)
	renderer, err := service.NewRenderService(display, dates, metrics)
	if err != nil {
		logr.Fatal("failed to init renderer", zap.Error(err))
	}

	syncSvc := service.NewSyncService(service.SyncServiceParams{
		Endpoint: cfg.Sync.Endpoint,
		Client:   &http.Client{Timeout: cfg.Sync.Timeout},
		Interval: cfg.Sync.Interval,
		Renderer: renderer,
		Cache:    cacheSvc,
		CacheTTL: cfg.Redis.TTL,
		Metrics:  metrics,
		Logger:   logr,
	})
	scheduler := service.NewSyncScheduler(syncSvc, service.SyncSchedulerConfig{
		Interval: cfg.Sync.Interval,
		Workers:  cfg.Sync.Workers,
		Logger:   logr,
	})

	pages, err := service.NewPageService(display, service.PageConfig{
		Title:              "Course Dashboard",
		RefreshInterval:    cfg.Sync.Interval,
		ServiceWorkerPath:  cfg.ServiceWorker.Path,
		ServiceWorkerScope: cfg.ServiceWorker.Scope,
		CacheName:          cfg.ServiceWorker.CacheName,
	}, logr)
	if err != nil {
		logr.Fatal("failed to init page renderer", zap.Error(err))
	}

	pageHandler := handler.NewPageHandler(pages)
	syncHandler := handler.NewSyncHandler(syncSvc, scheduler)
	calendarHandler := handler.NewCalendarHandler(syncSvc, service.NewCalendarService(dates))
	metricsHandler := handler.NewMetricsHandler(metrics, func() bool {
		_, ok := syncSvc.LastResult()
		return ok
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(middleware.Metrics(metrics, "/metrics"))
	r.Use(corsmiddleware.New(corsmiddleware.Options{AllowedOrigins: cfg.CORS.AllowedOrigins, Methods: []string{http.MethodGet, http.MethodPost, http.MethodOptions}}))
	r.Use(middleware.WithResponseMeta())

	r.GET("/", pageHandler.Index)
	r.GET("/fragments/:region", pageHandler.Fragment)
	r.GET(cfg.ServiceWorker.Path, pageHandler.ServiceWorker)
	r.StaticFS("/static", staticFS())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.GET("/sync/status", syncHandler.Status)
	api.POST("/sync/refresh", syncHandler.Refresh)
	api.GET("/calendar", calendarHandler.Weeks)
	api.GET("/calendar/export", calendarHandler.Export)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	scheduler.Start(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("endpoint", cfg.Sync.Endpoint))
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
	scheduler.Stop()
}

func staticFS() http.FileSystem {
	sub, err := fs.Sub(web.FS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
