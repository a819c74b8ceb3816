// Package ledger_repo provides the PostgreSQL implementation of the ledger
// repository. It is stateless: the session comes from the ambient scope on
// the context, so every method must run inside one.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txscope/internal/core/apperror"
	"txscope/internal/domain/ledger"
	"txscope/internal/infrastructure/storage/postgres"
)

const tableName = "ledger_entries"

var selectCols = postgres.ExtractDBColumns[ledger.Entry]()

// Compile-time check that Repo implements ledger.Repository.
var _ ledger.Repository = (*Repo)(nil)

// Repo persists ledger entries over the ambient session's querier.
type Repo struct{}

// New creates a ledger repository.
func New() *Repo {
	return &Repo{}
}

// builder returns a squirrel builder with PostgreSQL placeholder format.
func (r *Repo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) buildInsert(e *ledger.Entry) squirrel.InsertBuilder {
	return r.builder().
		Insert(tableName).
		SetMap(postgres.StructToMap(e))
}

func (r *Repo) buildGet(id uuid.UUID) squirrel.SelectBuilder {
	return r.builder().
		Select(selectCols...).
		From(tableName).
		Where(squirrel.Eq{"id": id})
}

func (r *Repo) buildList(account string, limit, offset int) squirrel.SelectBuilder {
	return r.builder().
		Select(selectCols...).
		From(tableName).
		Where(squirrel.Eq{"account": account}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
}

func (r *Repo) buildCount(account string) squirrel.SelectBuilder {
	return r.builder().
		Select("COUNT(*)").
		From(tableName).
		Where(squirrel.Eq{"account": account})
}

func (r *Repo) buildBalance(account string) squirrel.SelectBuilder {
	return r.builder().
		Select("COALESCE(SUM(amount), 0)::text").
		From(tableName).
		Where(squirrel.Eq{"account": account})
}

// Insert writes one entry.
func (r *Repo) Insert(ctx context.Context, e *ledger.Entry) error {
	sql, args, err := r.buildInsert(e).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := postgres.MustQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", tableName, err)
	}
	return nil
}

// GetByID returns one entry by its identifier.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	sql, args, err := r.buildGet(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	var e ledger.Entry
	if err := pgxscan.Get(ctx, postgres.MustQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ledger entry", id.String())
		}
		return nil, fmt.Errorf("get %s: %w", tableName, err)
	}
	return &e, nil
}

// ListByAccount returns an account's entries, newest first.
func (r *Repo) ListByAccount(ctx context.Context, account string, limit, offset int) ([]ledger.Entry, error) {
	sql, args, err := r.buildList(account, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	entries := make([]ledger.Entry, 0, limit)
	if err := pgxscan.Select(ctx, postgres.MustQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableName, err)
	}
	return entries, nil
}

// CountByAccount returns the number of entries for an account.
func (r *Repo) CountByAccount(ctx context.Context, account string) (int64, error) {
	sql, args, err := r.buildCount(account).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := postgres.MustQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", tableName, err)
	}
	return total, nil
}

// Balance returns the sum of an account's entries.
func (r *Repo) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	sql, args, err := r.buildBalance(account).ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build balance: %w", err)
	}

	var raw string
	if err := postgres.MustQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("sum %s: %w", tableName, err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
	}
	return balance, nil
}

// Schema is the DDL for the ledger table, applied at startup inside its own
// scope (see cmd/server).
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
    id         UUID PRIMARY KEY,
    account    TEXT NOT NULL,
    amount     NUMERIC(19,4) NOT NULL,
    reference  TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries (account, created_at DESC);
`
