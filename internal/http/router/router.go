package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brickline/lead-api/internal/auth"
	"github.com/brickline/lead-api/internal/config"
	"github.com/brickline/lead-api/internal/database"
	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/erp"
	"github.com/brickline/lead-api/internal/http/handler"
	"github.com/brickline/lead-api/internal/http/middleware"

	_ "github.com/brickline/lead-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	erpClient         *erp.Client
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	leadHandler       *handler.LeadHandler
	transitionHandler *handler.TransitionHandler
	stageHandler      *handler.StageHandler
	documentHandler   *handler.DocumentHandler
	inventoryHandler  *handler.InventoryHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	leadHandler *handler.LeadHandler,
	transitionHandler *handler.TransitionHandler,
	stageHandler *handler.StageHandler,
	documentHandler *handler.DocumentHandler,
	inventoryHandler *handler.InventoryHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		erpClient:         erpClient,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		leadHandler:       leadHandler,
		transitionHandler: transitionHandler,
		stageHandler:      stageHandler,
		documentHandler:   documentHandler,
		inventoryHandler:  inventoryHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.Stats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.Ping(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// The ERP connection is optional, so a degraded ERP does not
		// take the service out of rotation
		if rt.erpClient != nil {
			checks["erp"] = rt.erpClient.HealthCheck(r.Context())
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	writeRoles := []domain.UserRoleType{domain.RoleAgent, domain.RoleManager, domain.RoleAdmin}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Stage catalog
			r.Get("/stages", rt.stageHandler.List)

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Get("/pipeline", rt.leadHandler.Pipeline)
				r.Get("/{id}", rt.leadHandler.Get)
				r.Get("/{id}/timeline", rt.leadHandler.Timeline)
				r.Get("/{id}/booking", rt.transitionHandler.GetBooking)
				r.Get("/{id}/documents", rt.documentHandler.List)

				// Mutations require a write role
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(writeRoles...))

					r.Post("/", rt.leadHandler.Create)
					r.Put("/{id}", rt.leadHandler.Update)
					r.Delete("/{id}", rt.leadHandler.Delete)

					// Stage transition workflow
					r.Post("/{id}/transition", rt.transitionHandler.Start)
					r.Delete("/{id}/transition", rt.transitionHandler.Cancel)
					r.Post("/{id}/booking", rt.transitionHandler.CompleteBooking)
					r.Delete("/{id}/booking", rt.transitionHandler.CancelBooking)

					r.Post("/{id}/documents", rt.documentHandler.Upload)
				})
			})

			// Documents
			r.Route("/documents", func(r chi.Router) {
				r.Get("/{documentId}", rt.documentHandler.Download)
				r.With(rt.authMiddleware.RequireRole(writeRoles...)).
					Delete("/{documentId}", rt.documentHandler.Delete)
			})

			// Unit inventory (read-only ERP mirror)
			r.Route("/inventory", func(r chi.Router) {
				r.Get("/units", rt.inventoryHandler.ListUnits)
				r.Get("/units/{unitCode}", rt.inventoryHandler.GetUnit)
			})
		})
	})

	return r
}
