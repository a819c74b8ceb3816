package middleware

import (
	"github.com/gin-gonic/gin"

	"txscope/internal/core/apperror"
	"txscope/internal/core/scope"
	"txscope/internal/core/session"
)

// SessionScope opens one scope per request and finalizes it after the
// handler chain returns: commit when the handlers recorded no error, roll
// back otherwise. This is the host-injection adapter over the manager's
// Begin/Finalize shape - the session is produced once before the handler
// runs and the scope is driven to completion exactly once afterwards.
//
// The session rides the request context, so repositories and nested
// manager.Run calls join the request's scope instead of opening their own.
//
// A finalize failure after the handler already streamed its response can
// only be logged, not reported to the client; handlers that must not
// acknowledge uncommitted work should manage their own scope instead.
func SessionScope(mgr *scope.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc, err := mgr.Begin(c.Request.Context())
		if err != nil {
			_ = c.Error(apperror.NewDatabase(err))
			c.Abort()
			return
		}

		ctx := session.WithSession(c.Request.Context(), sc.Session())
		c.Request = c.Request.WithContext(ctx)
		c.Set("scope_id", sc.ID().String())

		c.Next()

		var opErr error
		if len(c.Errors) > 0 {
			opErr = c.Errors.Last().Err
		}

		if finErr := sc.Finalize(c.Request.Context(), opErr); finErr != nil && opErr == nil {
			_ = c.Error(apperror.NewDatabase(finErr))
		}
	}
}
