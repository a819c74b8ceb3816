package scope

import (
	"context"

	"txscope/internal/core/session"
)

// Wrap is the decorator mode: it turns a unit of work into a function that
// implicitly opens a scope around every call. The returned function and Run
// produce identical commit/rollback/release sequences for identical
// outcomes; Wrap is a thin adapter, not a second finalization path.
func (m *Manager) Wrap(fn Fn) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return m.Run(ctx, fn)
	}
}

// WrapValue is Wrap for operations that produce a value.
func WrapValue[T any](m *Manager, fn func(ctx context.Context, sess session.Session) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return RunValue(ctx, m, fn)
	}
}
