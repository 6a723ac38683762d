package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/brickline/lead-api/docs"
	"github.com/brickline/lead-api/internal/auth"
	"github.com/brickline/lead-api/internal/config"
	"github.com/brickline/lead-api/internal/database"
	"github.com/brickline/lead-api/internal/erp"
	"github.com/brickline/lead-api/internal/http/handler"
	"github.com/brickline/lead-api/internal/http/middleware"
	"github.com/brickline/lead-api/internal/http/router"
	"github.com/brickline/lead-api/internal/jobs"
	"github.com/brickline/lead-api/internal/logger"
	"github.com/brickline/lead-api/internal/repository"
	"github.com/brickline/lead-api/internal/service"
	"github.com/brickline/lead-api/internal/storage"
)

// @title Brickline Lead API
// @version 1.0
// @description Lead lifecycle and booking conversion API for real-estate sales teams

// @contact.name API Support
// @contact.email support@brickline.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "leads-staging.brickline.io"
	case "production":
		docs.SwaggerInfo.Host = "leads.brickline.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize document storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize the ERP inventory connection (optional, read-only)
	// The app continues without it if the connection cannot be made
	var erpClient *erp.Client
	if cfg.ERP.Enabled {
		erpClient, err = erp.NewClient(&cfg.ERP, log)
		if err != nil {
			log.Warn("ERP connection failed, continuing without unit inventory",
				zap.Error(err),
			)
		} else if erpClient != nil {
			log.Info("ERP connected successfully",
				zap.Int("max_open_conns", cfg.ERP.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.ERP.QueryTimeout),
			)
		}
	} else {
		log.Info("ERP not configured, unit inventory endpoints disabled")
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	timelineRepo := repository.NewLeadTimelineRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// Initialize services
	leadService := service.NewLeadService(db, leadRepo, timelineRepo, bookingRepo, log)
	documentService := service.NewDocumentService(documentRepo, leadRepo, fileStorage, log)
	inventoryService := service.NewInventoryService(erpClient, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	leadHandler := handler.NewLeadHandler(leadService, log)
	transitionHandler := handler.NewTransitionHandler(leadService, log)
	stageHandler := handler.NewStageHandler()
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, log)

	// Initialize router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		leadHandler,
		transitionHandler,
		stageHandler,
		documentHandler,
		inventoryHandler,
	)

	// Start the payment overdue job when enabled
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterOverdueJob(scheduler, bookingRepo, log, cfg.Jobs.OverdueSchedule); err != nil {
			log.Error("Failed to register payment overdue job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with payment overdue job",
				zap.String("cron_expr", cfg.Jobs.OverdueSchedule),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
