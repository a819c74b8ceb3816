package scope

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDoubleFinalize is returned when Finalize is invoked a second time on the
// same scope. This is a programmer-usage error: the extra call performs no
// commit, rollback or close.
var ErrDoubleFinalize = errors.New("scope already finalized")

// Op names the lifecycle step that produced a failure.
type Op string

const (
	OpAcquire   Op = "acquire"
	OpOperation Op = "operation"
	OpCommit    Op = "commit"
	OpRollback  Op = "rollback"
	OpRelease   Op = "release"
)

// CleanupFailure is a secondary failure that occurred while finalizing a
// scope whose primary failure happened earlier.
type CleanupFailure struct {
	Op  Op
	Err error
}

func (f CleanupFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

// Error is the failure of one scope. Err is always the primary cause - the
// first failure observed - and Unwrap exposes it so errors.Is/As reach the
// original operation or commit error. Failures that happen during cleanup
// after the primary one are attached as secondary annotations, never dropped
// and never allowed to replace the primary cause.
type Error struct {
	// Op is the lifecycle step the primary failure came from.
	Op Op

	// Err is the primary cause.
	Err error

	// Cleanup holds secondary failures from rollback/release, in order.
	Cleanup []CleanupFailure
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scope %s: %v", e.Op, e.Err)
	for _, f := range e.Cleanup {
		fmt.Fprintf(&b, " (cleanup %s)", f)
	}
	return b.String()
}

// Unwrap returns the primary cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var se *Error
	ok := errors.As(err, &se)
	return se, ok
}
