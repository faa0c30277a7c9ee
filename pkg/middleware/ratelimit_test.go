package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandlerFn() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// ============================================================================
// RateLimit
// ============================================================================

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	var buf bytes.Buffer
	h := RateLimit(0.001, 2, newTestLogger(&buf))(okHandlerFn())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Contains(t, buf.String(), "rate limit exceeded")
}

func TestRateLimit_KeyedBySession(t *testing.T) {
	var buf bytes.Buffer
	h := Session()(RateLimit(0.001, 1, newTestLogger(&buf))(okHandlerFn()))

	send := func(session string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/checkout/submit", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		req.Header.Set(SessionHeader, session)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	a := "0b7f0a5e-8c55-4a55-9d3b-5d8f2d1b9a10"
	b := "7c1d2e3f-4a5b-4c6d-8e7f-9a0b1c2d3e4f"
	assert.Equal(t, http.StatusOK, send(a))
	assert.Equal(t, http.StatusTooManyRequests, send(a))
	assert.Equal(t, http.StatusOK, send(b), "another session on the same IP has its own bucket")
}

func TestVisitorStore_EvictsIdleClients(t *testing.T) {
	s := newVisitorStore(1, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return now }

	s.allow("a")
	s.allow("b")
	assert.Equal(t, 2, s.len())

	now = now.Add(2 * time.Minute)
	s.allow("c")
	assert.Equal(t, 1, s.len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}, "10.0.0.1:1234", "198.51.100.4"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.9"}, "10.0.0.1:1234", "198.51.100.9"},
		{"garbage forwarded falls through", map[string]string{"X-Forwarded-For": "unknown"}, "192.0.2.1:80", "192.0.2.1"},
		{"remote addr", nil, "192.0.2.1:80", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
