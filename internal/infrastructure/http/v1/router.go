// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"txscope/internal/core/scope"
	"txscope/internal/domain/ledger"
	"txscope/internal/infrastructure/http/v1/handlers"
	"txscope/internal/infrastructure/http/v1/middleware"
	"txscope/internal/infrastructure/storage/postgres"
	"txscope/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Scopes opens the per-request session scope for mutating routes
	Scopes *scope.Manager

	// Ledger serves the ledger endpoints
	Ledger *ledger.Service

	// Logger for request logging
	Logger *logger.Logger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no session scope required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	ledgerHandler := handlers.NewLedgerHandler(cfg.Ledger)

	// API v1
	api := router.Group("/api/v1")
	{
		// Mutating routes share one session per request: the scope is
		// opened before the handler and committed (or rolled back)
		// after it, so a handler touching several repositories stays
		// atomic without managing the scope itself.
		scoped := api.Group("")
		scoped.Use(middleware.SessionScope(cfg.Scopes))
		{
			scoped.POST("/entries", ledgerHandler.Record)
			scoped.POST("/transfers", ledgerHandler.Transfer)
		}

		// Read routes skip the request scope; the service opens its
		// own read-only scope per call.
		api.GET("/entries/:id", ledgerHandler.Get)
		api.GET("/accounts/:account/entries", ledgerHandler.List)
		api.GET("/accounts/:account/balance", ledgerHandler.Balance)
	}

	return router
}
