package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vedantkulkarni1234/website/pkg/httputil"
)

// SessionHeader carries the anonymous shopper session that scopes a cart.
const SessionHeader = "X-Session-ID"

type contextKeyType string

const sessionIDKey contextKeyType = "session_id"

// Session resolves the shopper session for every request. A missing header
// starts a new session; a malformed one is rejected with 400. The resolved id
// is echoed in the response header so the client can keep using it.
func Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(SessionHeader))

			var id uuid.UUID
			if raw == "" {
				id = uuid.New()
			} else {
				parsed, ok := httputil.ParseUUID(w, "session id", raw)
				if !ok {
					return
				}
				id = parsed
			}

			sid := id.String()
			w.Header().Set(SessionHeader, sid)
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
		})
	}
}

// WithSessionID stores the session id in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the session id set by Session, or "".
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}
