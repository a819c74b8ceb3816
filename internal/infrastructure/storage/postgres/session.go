package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"txscope/internal/core/session"
)

// Compile-time check that Factory implements session.Factory.
var _ session.Factory = (*Factory)(nil)

// SessionOptions configures the transaction behind each session.
type SessionOptions struct {
	// IsolationLevel: pgx.Serializable, pgx.RepeatableRead, pgx.ReadCommitted
	IsolationLevel pgx.TxIsoLevel

	// AccessMode: pgx.ReadWrite, pgx.ReadOnly
	AccessMode pgx.TxAccessMode

	// StatementTimeout protects against long-running queries (default 30s).
	// Timeout policy lives here, at the resource layer - the scope manager
	// carries none of its own.
	StatementTimeout time.Duration
}

// DefaultSessionOptions returns production-safe defaults.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
	}
}

// ReadOnlySessionOptions for query-only scopes (better performance, no locks).
func ReadOnlySessionOptions() SessionOptions {
	opts := DefaultSessionOptions()
	opts.AccessMode = pgx.ReadOnly
	return opts
}

// Factory produces PostgreSQL-backed sessions: one pooled connection with an
// open transaction per session.
type Factory struct {
	pool *pgxpool.Pool
	opts SessionOptions
}

// NewFactory creates a session factory over the given pool.
func NewFactory(pool *Pool, opts SessionOptions) *Factory {
	return &Factory{pool: pool.Pool, opts: opts}
}

// Open acquires a connection and begins a transaction on it. On any failure
// past the acquire, the connection is released before returning so nothing
// leaks from a half-opened session.
func (f *Factory) Open(ctx context.Context) (session.Session, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   f.opts.IsolationLevel,
		AccessMode: f.opts.AccessMode,
	})
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	if f.opts.StatementTimeout > 0 {
		_, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", f.opts.StatementTimeout.Milliseconds()))
		if err != nil {
			_ = tx.Rollback(ctx)
			conn.Release()
			return nil, fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	return &Session{conn: conn, tx: tx}, nil
}

// Session is one open connection/transaction pair. Its Commit/Rollback/Close
// are driven exactly once each (one of the first two, then Close) by the
// owning scope.
type Session struct {
	conn *pgxpool.Conn
	tx   pgx.Tx
}

// Commit makes the transaction permanent.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction. A transaction the server already closed
// (e.g. after a fatal connection error) counts as rolled back.
func (s *Session) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// Close returns the connection to the pool.
func (s *Session) Close(_ context.Context) error {
	s.conn.Release()
	return nil
}

// Querier is the query surface repositories work against.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier exposes the session's transaction to repositories.
func (s *Session) Querier() Querier {
	return s.tx
}

// MustQuerier returns the Querier of the ambient session in ctx.
// Panics if there is no session or it is not PostgreSQL-backed - this
// indicates a programming error (repository called outside a scope, or the
// wrong factory wired in).
func MustQuerier(ctx context.Context) Querier {
	sess := session.MustFromContext(ctx)
	pgSess, ok := sess.(*Session)
	if !ok {
		panic(fmt.Sprintf("session in context has unexpected type: %T", sess))
	}
	return pgSess.Querier()
}
