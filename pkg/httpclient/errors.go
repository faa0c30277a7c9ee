package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
)

// RemoteErrorResponse covers the two error body shapes seen from upstreams:
// the {error:{code,message}} envelope and a flat {error:"...", message:"..."}.
type RemoteErrorResponse struct {
	Error json.RawMessage `json:"error"`
	Msg   string          `json:"message"`
}

type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r RemoteErrorResponse) parse() (code, message string, ok bool) {
	if len(r.Error) == 0 || string(r.Error) == "null" {
		return "", "", false
	}
	var env remoteError
	if json.Unmarshal(r.Error, &env) == nil && (env.Code != "" || env.Message != "") {
		return env.Code, env.Message, true
	}
	var flat string
	if json.Unmarshal(r.Error, &flat) == nil && flat != "" {
		if r.Msg != "" {
			return flat, r.Msg, true
		}
		return "", flat, true
	}
	return "", "", false
}

// ParseResponseError consumes and closes a non-2xx response body and turns
// it into an error. Structured bodies keep their code and message.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	var remote RemoteErrorResponse
	if json.Unmarshal(bodyBytes, &remote) == nil {
		if code, message, ok := remote.parse(); ok {
			return mapRemoteError(resp.StatusCode, code, message, upstream)
		}
	}

	return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, string(bodyBytes))
}

func mapRemoteError(status int, code, message, upstream string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualifiedMsg)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, status, code, message)
	default:
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
