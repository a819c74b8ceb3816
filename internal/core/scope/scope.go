// Package scope manages the lifecycle of one unit of work against a
// transactional resource: acquire a session, hand control to caller-supplied
// logic, commit on success or roll back on failure, then release - exactly
// once, on every exit path.
//
// Three entry shapes share one finalization routine:
//
//   - Run: direct scoped-block mode, the closure form.
//   - Wrap: decorator mode, wrapping a whole operation.
//   - Begin + Finalize: single-step-then-finalize mode for hosts that
//     produce the session in one call and drive cleanup in another
//     (see middleware.SessionScope for the HTTP adapter).
package scope

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"txscope/internal/core/session"
	"txscope/pkg/logger"
)

var tracer = otel.Tracer("txscope/scope")

// State tracks where a scope is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateAcquired
	StateRunning
	StateCommitting
	StateRollingBack
	StateReleasing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateAcquired:
		return "acquired"
	case StateRunning:
		return "running"
	case StateCommitting:
		return "committing"
	case StateRollingBack:
		return "rolling_back"
	case StateReleasing:
		return "releasing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Outcome is the result of the wrapped operation; it decides whether the
// session is committed or rolled back.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Fn is a unit of work run inside a scope. The session is passed both as an
// argument and as the ambient session on ctx, so repositories further down
// the call chain can reach it via session.FromContext.
type Fn func(ctx context.Context, sess session.Session) error

// Manager opens scopes over sessions produced by a Factory.
type Manager struct {
	factory session.Factory
}

// NewManager creates a scope manager bound to the given session factory.
func NewManager(factory session.Factory) *Manager {
	return &Manager{factory: factory}
}

// Scope is one activation of the manager: a single acquire/run/finalize
// cycle. It is not safe for concurrent use; one scope owns one session.
type Scope struct {
	id   uuid.UUID
	sess session.Session
	span trace.Span

	mu    sync.Mutex
	state State
}

// ID returns the scope's identifier, used for log correlation.
func (s *Scope) ID() uuid.UUID { return s.id }

// Session returns the session owned by this scope.
func (s *Scope) Session() session.Session { return s.sess }

// State reports the scope's current lifecycle state.
func (s *Scope) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin acquires a session and returns the scope owning it. The caller (or
// whoever the scope is handed off to) must drive Finalize exactly once;
// a scope that is never finalized leaks its session.
//
// An acquire failure aborts before anything is opened: no rollback or
// release is needed and the factory error is surfaced as-is.
func (m *Manager) Begin(ctx context.Context) (*Scope, error) {
	sc := &Scope{id: uuid.New(), state: StateAcquiring}

	_, sc.span = tracer.Start(ctx, "scope",
		trace.WithAttributes(attribute.String("scope.id", sc.id.String())))

	sess, err := m.factory.Open(ctx)
	if err != nil {
		sc.state = StateClosed
		sc.span.End()
		return nil, &Error{Op: OpAcquire, Err: fmt.Errorf("open session: %w", err)}
	}

	sc.sess = sess
	sc.state = StateAcquired
	logger.Debug(ctx, "scope opened", "scope_id", sc.id)
	return sc, nil
}

// markRunning moves the scope into StateRunning while an operation executes
// under Run. Host-driven scopes (Begin + Finalize with no intervening Run)
// stay in StateAcquired until finalized.
func (s *Scope) markRunning() {
	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()
}

// Finalize ends the scope: commit when opErr is nil and ctx is not
// cancelled, roll back otherwise, then release the session. Release is
// attempted even when commit or rollback failed.
//
// The returned error always carries the primary cause first: an operation
// failure passes through unchanged when cleanup was clean, and cleanup
// failures are attached as secondary annotations (see Error). A second call
// returns ErrDoubleFinalize and touches the session no further.
func (s *Scope) Finalize(ctx context.Context, opErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAcquired && s.state != StateRunning {
		return fmt.Errorf("scope %s in state %s: %w", s.id, s.state, ErrDoubleFinalize)
	}

	outcome := OutcomeSuccess
	switch {
	case opErr != nil:
		outcome = OutcomeFailure
	case ctx.Err() != nil:
		// Cancellation before completion is a failure outcome.
		outcome = OutcomeCancelled
		opErr = ctx.Err()
	}

	err := s.finalize(ctx, outcome, opErr)

	s.span.SetAttributes(attribute.String("scope.outcome", outcome.String()))
	if err != nil {
		s.span.RecordError(err)
	}
	s.span.End()
	logger.Debug(ctx, "scope finalized", "scope_id", s.id, "outcome", outcome.String())
	return err
}

// finalize is the single commit-or-rollback-then-release routine every entry
// shape funnels into. Caller holds s.mu.
func (s *Scope) finalize(ctx context.Context, outcome Outcome, opErr error) error {
	var primary *Error

	if outcome == OutcomeSuccess {
		s.state = StateCommitting
		if err := s.sess.Commit(ctx); err != nil {
			// A commit failure is terminal: no rollback, straight to
			// release, and the commit error is the scope's failure.
			primary = &Error{Op: OpCommit, Err: err}
		}
	} else {
		s.state = StateRollingBack
		// Cleanup runs on a fresh context so a cancelled request
		// context cannot abort it.
		if err := s.sess.Rollback(context.WithoutCancel(ctx)); err != nil {
			logger.Error(ctx, "rollback failed",
				"scope_id", s.id, "error", err, "original_error", opErr)
			primary = &Error{
				Op:      OpOperation,
				Err:     opErr,
				Cleanup: []CleanupFailure{{Op: OpRollback, Err: err}},
			}
		}
	}

	s.state = StateReleasing
	if err := s.sess.Close(context.WithoutCancel(ctx)); err != nil {
		logger.Error(ctx, "session close failed", "scope_id", s.id, "error", err)
		switch {
		case primary != nil:
			primary.Cleanup = append(primary.Cleanup, CleanupFailure{Op: OpRelease, Err: err})
		case opErr != nil:
			primary = &Error{
				Op:      OpOperation,
				Err:     opErr,
				Cleanup: []CleanupFailure{{Op: OpRelease, Err: err}},
			}
		default:
			// Nothing failed before release; the release failure is
			// the primary cause.
			primary = &Error{Op: OpRelease, Err: err}
		}
	}
	s.state = StateClosed

	if primary != nil {
		return primary
	}
	return opErr
}

// Run executes fn inside its own scope: acquire, run, commit or roll back,
// release. This is the direct scoped-block mode.
//
// When ctx already carries an ambient session, fn joins that scope instead
// of opening a nested one; commit/rollback then belong to the outer scope's
// owner. A panic in fn rolls back and releases before re-panicking.
func (m *Manager) Run(ctx context.Context, fn Fn) error {
	if sess, ok := session.FromContext(ctx); ok {
		return fn(ctx, sess)
	}

	sc, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	sc.markRunning()

	defer func() {
		if r := recover(); r != nil {
			_ = sc.Finalize(ctx, fmt.Errorf("panic in scoped operation: %v", r))
			panic(r)
		}
	}()

	opErr := fn(session.WithSession(ctx, sc.sess), sc.sess)
	return sc.Finalize(ctx, opErr)
}

// RunValue is Run for operations that produce a value. The value is returned
// only when the whole scope, commit included, succeeded.
func RunValue[T any](ctx context.Context, m *Manager, fn func(ctx context.Context, sess session.Session) (T, error)) (T, error) {
	var out T
	err := m.Run(ctx, func(ctx context.Context, sess session.Session) error {
		var fnErr error
		out, fnErr = fn(ctx, sess)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
