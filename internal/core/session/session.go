// Package session defines the transactional resource abstractions the scope
// manager operates on. This package holds interfaces only, following the
// Dependency Inversion Principle: the actual implementation lives in
// infrastructure/storage/postgres, and tests substitute in-memory fakes.
package session

import (
	"context"
)

// Session is a handle to one open transactional resource connection.
// It is owned exclusively by a single scope for the duration of that scope
// and must never be shared across concurrent scopes.
//
// Commit, Rollback and Close are each called at most once per scope by the
// scope manager: exactly one of Commit/Rollback, then Close.
type Session interface {
	// Commit makes the unit of work permanent.
	Commit(ctx context.Context) error

	// Rollback discards the unit of work.
	Rollback(ctx context.Context) error

	// Close releases the underlying connection. Called exactly once per
	// scope, even when Commit or Rollback failed.
	Close(ctx context.Context) error
}

// Factory produces a new Session on demand. It is the resource-factory
// collaborator of the scope manager; swapping it is how tests exercise the
// full commit/rollback/release contract without a live database.
type Factory interface {
	Open(ctx context.Context) (Session, error)
}

// sessionKey is the context key for the ambient Session.
type sessionKey struct{}

// WithSession returns a context carrying s as the ambient session.
//
// This is the explicit ownership handoff: the context may travel across call
// boundaries (e.g. stored on a request), but exactly one scope still owns the
// eventual finalize call. A handed-off session whose scope is never finalized
// is a connection leak; this is a caller obligation the manager cannot
// enforce across an arbitrary handoff boundary.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the ambient Session, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// MustFromContext returns the ambient Session.
// Panics if none is present - this indicates a programming error
// (a repository called outside any scope).
func MustFromContext(ctx context.Context) Session {
	s, ok := FromContext(ctx)
	if !ok {
		panic("session: no session in context; call inside a scope")
	}
	return s
}
