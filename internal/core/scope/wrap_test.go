package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txscope/internal/core/session"
)

// Decorator mode and direct mode must produce identical resource sequences
// for identical operation outcomes.
func TestWrap_MatchesRunSequences(t *testing.T) {
	outcomes := map[string]error{
		"success": nil,
		"failure": errDomain,
	}

	for name, opErr := range outcomes {
		t.Run(name, func(t *testing.T) {
			fn := func(context.Context, session.Session) error { return opErr }

			direct := &fakeFactory{}
			directErr := NewManager(direct).Run(context.Background(), fn)

			decorated := &fakeFactory{}
			decoratedErr := NewManager(decorated).Wrap(fn)(context.Background())

			assert.Equal(t, direct.calls, decorated.calls)
			assert.Equal(t, directErr, decoratedErr)
		})
	}
}

func TestWrap_ScopePerCall(t *testing.T) {
	f := &fakeFactory{}
	wrapped := NewManager(f).Wrap(func(context.Context, session.Session) error { return nil })

	require.NoError(t, wrapped(context.Background()))
	require.NoError(t, wrapped(context.Background()))

	// Each invocation opened and finalized its own scope.
	assert.Equal(t, []string{
		"open", "commit", "close",
		"open", "commit", "close",
	}, f.calls)
}

func TestWrapValue(t *testing.T) {
	f := &fakeFactory{}
	wrapped := WrapValue(NewManager(f), func(context.Context, session.Session) (string, error) {
		return "done", nil
	})

	got, err := wrapped(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, []string{"open", "commit", "close"}, f.calls)
}
