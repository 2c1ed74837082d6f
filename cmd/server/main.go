package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/bizreview-backend/config"
	"github.com/ikkim/bizreview-backend/internal/app/controller"
	"github.com/ikkim/bizreview-backend/internal/app/repository"
	"github.com/ikkim/bizreview-backend/internal/app/service"
	"github.com/ikkim/bizreview-backend/internal/db"
	"github.com/ikkim/bizreview-backend/internal/metrics"
	"github.com/ikkim/bizreview-backend/internal/middleware"
	"github.com/ikkim/bizreview-backend/internal/router"
	"github.com/ikkim/bizreview-backend/internal/scheduler"
	"github.com/ikkim/bizreview-backend/internal/storage"
	ws "github.com/ikkim/bizreview-backend/internal/websocket"
	"github.com/ikkim/bizreview-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting business review API", map[string]interface{}{
		"environment":  cfg.Server.Environment,
		"port":         cfg.Server.Port,
		"store_driver": cfg.Store.Driver,
	})

	// Initialize store
	store, err := db.OpenStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open store", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", err)
		}
	}()

	stop := make(chan struct{})

	// Event fan-out
	hub := ws.NewHub()
	go hub.Run(stop)
	events := service.Publishers{hub, metrics.EventCounter{}}

	// Initialize repositories
	businessRepo := repository.NewBusinessRepository(store)
	reviewRepo := repository.NewReviewRepository(store)

	// Initialize services
	businessService := service.NewBusinessService(store, businessRepo, reviewRepo, events)
	reviewService := service.NewReviewService(businessRepo, reviewRepo, events)

	// Optional snapshot backups
	var backups *scheduler.BackupScheduler
	if cfg.Backup.Enabled {
		uploader := storage.NewS3Storage(context.Background(), cfg.Backup.Region, cfg.Backup.Bucket,
			cfg.Backup.AccessKeyID, cfg.Backup.SecretAccessKey)
		backups = scheduler.NewBackupScheduler(cfg.Backup.Schedule, cfg.Backup.Prefix,
			service.NewSnapshotService(businessRepo, reviewRepo), uploader)
		if err := backups.Start(); err != nil {
			logger.Fatal("Failed to start backup scheduler", err)
		}
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	rateLimiter.StartCleanup(time.Minute, stop)

	// Setup router
	r := router.NewRouter(
		controller.NewBusinessController(businessService),
		controller.NewReviewController(reviewService),
		controller.NewSystemController(store, cfg.Store.Driver),
		controller.NewEventController(hub, cfg.CORS.AllowedOrigins),
		rateLimiter,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}

	if backups != nil {
		backups.Stop()
	}
	close(stop)

	logger.Info("Server stopped successfully")
}
