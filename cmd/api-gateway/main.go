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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/cellgroup-api/api/swagger"
	"github.com/noah-isme/cellgroup-api/internal/handler"
	"github.com/noah-isme/cellgroup-api/internal/middleware"
	"github.com/noah-isme/cellgroup-api/internal/repository"
	"github.com/noah-isme/cellgroup-api/internal/service"
	"github.com/noah-isme/cellgroup-api/pkg/cache"
	"github.com/noah-isme/cellgroup-api/pkg/config"
	"github.com/noah-isme/cellgroup-api/pkg/database"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
	"github.com/noah-isme/cellgroup-api/pkg/jobs"
	"github.com/noah-isme/cellgroup-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/cellgroup-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/cellgroup-api/pkg/middleware/requestid"
)

// @title Cell Group API
// @version 1.0.0
// @description Health and attendance analytics for cell groups
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	validate := validator.New()

	groupRepo := repository.NewCellGroupRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	reportRepo := repository.NewWeeklyReportRepository(db)
	historyRepo := repository.NewHealthHistoryRepository(db)

	checks := map[string]handler.Pinger{"postgres": db}

	var redisClient *redis.Client
	if cfg.Notifications.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	factRepo := repository.NewFactRepository(redisClient, cfg.Notifications.QueueKey, cfg.Notifications.DedupeTTL, logr)

	notifier := service.NewNotificationService(cfg.Notifications.Enabled, factRepo, metrics, logr)
	if cfg.Notifications.Enabled {
		queue := jobs.NewQueue("facts", notifier.HandleJob, jobs.QueueConfig{
			Workers:     cfg.Notifications.Workers,
			MaxRetries:  cfg.Notifications.Retries,
			ShouldRetry: appErrors.Retryable,
			Logger:      logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		notifier.AttachDispatcher(queue)
	}

	reportSvc := service.NewReportService(reportRepo, groupRepo, memberRepo, visitorRepo, validate, metrics, logr)
	analyticsSvc := service.NewAnalyticsService(groupRepo, memberRepo, reportRepo, visitorRepo, historyRepo, notifier, metrics, logr)
	visitorSvc := service.NewVisitorService(visitorRepo, groupRepo, validate, metrics, logr)
	healthSvc := service.NewHealthService(historyRepo, groupRepo, reportRepo, validate, metrics, logr)
	dashboardSvc := service.NewDashboardService(groupRepo, metrics, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction || cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	handler.Register(api, handler.Handlers{
		Reports:    handler.NewReportHandler(reportSvc),
		CellGroups: handler.NewCellGroupHandler(analyticsSvc, healthSvc),
		Analytics:  handler.NewAnalyticsHandler(analyticsSvc),
		Visitors:   handler.NewVisitorHandler(visitorSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "notifications", cfg.Notifications.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
