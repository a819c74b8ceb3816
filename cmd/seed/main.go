// Package main provides a CLI tool for seeding the database with demo
// ledger data. It is also the non-HTTP usage example: every write runs
// through a directly invoked scope, no web framework involved.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"txscope/internal/core/scope"
	"txscope/internal/domain/ledger"
	"txscope/internal/infrastructure/storage/postgres"
	"txscope/internal/infrastructure/storage/postgres/ledger_repo"
	"txscope/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	scopes := scope.NewManager(postgres.NewFactory(pool, postgres.DefaultSessionOptions()))
	readScopes := scope.NewManager(postgres.NewFactory(pool, postgres.ReadOnlySessionOptions()))
	svc := ledger.NewService(ledger_repo.New(), scopes, readScopes)

	if _, err := svc.Record(ctx, ledger.RecordInput{
		Account:   "cash",
		Amount:    decimal.RequireFromString("1000.00"),
		Reference: "opening balance",
	}); err != nil {
		log.Fatalw("failed to seed opening balance", "error", err)
	}

	if _, err := svc.Transfer(ctx, "cash", "expenses", decimal.RequireFromString("42.50"), "demo transfer"); err != nil {
		log.Fatalw("failed to seed transfer", "error", err)
	}

	balance, err := svc.Balance(ctx, "cash")
	if err != nil {
		log.Fatalw("failed to read balance", "error", err)
	}

	log.Infow("seed complete", "cash_balance", balance.String())
}
