package http

import (
	"net/http"
	"strings"

	"github.com/vedantkulkarni1234/website/pkg/httputil"
	"github.com/vedantkulkarni1234/website/pkg/middleware"
)

// ContentTypeJSON rejects bodies that are not declared as JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// sessionID returns the shopper session resolved by middleware.Session.
func sessionID(r *http.Request) string {
	return middleware.SessionIDFromContext(r.Context())
}
