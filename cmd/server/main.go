// Package main is the entry point for the txscope API server.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"txscope/internal/core/scope"
	"txscope/internal/core/session"
	"txscope/internal/domain/ledger"
	v1 "txscope/internal/infrastructure/http/v1"
	"txscope/internal/infrastructure/storage/postgres"
	"txscope/internal/infrastructure/storage/postgres/ledger_repo"
	"txscope/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Context-based log calls (scope open/finalize debug lines) resolve to
	// this logger instead of the package default.
	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting txscope server")

	// --- Database pool ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Scope managers ---
	sessionOpts := postgres.DefaultSessionOptions()
	if timeout := getEnvDuration("DB_STATEMENT_TIMEOUT", 0); timeout > 0 {
		sessionOpts.StatementTimeout = timeout
	}
	scopes := scope.NewManager(postgres.NewFactory(pool, sessionOpts))
	readScopes := scope.NewManager(postgres.NewFactory(pool, postgres.ReadOnlySessionOptions()))

	// --- Schema bootstrap ---
	// Decorator mode: ensureSchema is a plain func(ctx) error with its own
	// scope wrapped around every call.
	ensureSchema := scopes.Wrap(func(ctx context.Context, _ session.Session) error {
		_, err := postgres.MustQuerier(ctx).Exec(ctx, ledger_repo.Schema)
		return err
	})
	if err := ensureSchema(ctx); err != nil {
		log.Fatalw("failed to ensure schema", "error", err)
	}
	log.Info("schema ensured")

	// --- Ledger service ---
	ledgerService := ledger.NewService(ledger_repo.New(), scopes, readScopes)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:   pool,
		Scopes: scopes,
		Ledger: ledgerService,
		Logger: log,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return logger.WithLogger(context.Background(), log)
		},
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
