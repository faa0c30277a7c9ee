package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_EnvelopeBody(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"not found", http.StatusNotFound, apperrors.ErrNotFound},
		{"bad request", http.StatusBadRequest, apperrors.ErrInvalidInput},
		{"unprocessable", http.StatusUnprocessableEntity, apperrors.ErrInvalidInput},
		{"conflict", http.StatusConflict, apperrors.ErrConflict},
		{"unauthorized", http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, apperrors.ErrForbidden},
		{"rate limited", http.StatusTooManyRequests, apperrors.ErrServiceUnavail},
		{"unavailable", http.StatusServiceUnavailable, apperrors.ErrServiceUnavail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, `{"error":{"code":"X","message":"nope"}}`), "payments")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestParseResponseError_FlatBody(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadRequest, `{"error":"invalid_amount","message":"amount must be positive"}`), "payments")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "amount must be positive")
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusInternalServerError, `{"error":{"code":"BOOM","message":"db down"}}`), "payments")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payments server error (500/BOOM)")

	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))
}

func TestParseResponseError_UnstructuredBodies(t *testing.T) {
	for _, body := range []string{"", "<html>bad gateway</html>", `{"error":null}`, `{"ok":false}`} {
		err := ParseResponseError(makeResponse(http.StatusBadGateway, body), "payments")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payments returned status 502")
	}
}

func TestParseResponseError_OtherStatusKeepsCode(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusPaymentRequired, `{"error":{"code":"CARD_DECLINED","message":"declined"}}`), "payments")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CARD_DECLINED", appErr.Code)
	assert.Equal(t, http.StatusPaymentRequired, appErr.Status)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}
