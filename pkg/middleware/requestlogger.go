package middleware

import (
	"log/slog"
	"net/http"

	"github.com/vedantkulkarni1234/website/pkg/logger"
)

// RequestLogger stores a request-scoped logger carrying correlation_id,
// session_id, trace_id and span_id in the context. Handlers and services
// retrieve it with logger.FromContext.
//
// Mount it after RequestLogging, Tracing and Session.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if sid := SessionIDFromContext(ctx); sid != "" {
				ctx = logger.WithSessionID(ctx, sid)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
