package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// SchemaGuard blocks until the store schema is ready or fails.
type SchemaGuard interface {
	Ensure(ctx context.Context) error
}

// RequireSchema holds requests until the schema has been materialized. When
// initialization fails the request gets the uniform 500 envelope and the next
// request triggers a new attempt.
func RequireSchema(guard SchemaGuard, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := guard.Ensure(r.Context()); err != nil {
				logger.Error("Schema not ready",
					zap.Error(err),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
				RespondWithFailure(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
