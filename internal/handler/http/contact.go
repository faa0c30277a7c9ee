package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/service"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
	"github.com/vedantkulkarni1234/website/pkg/httputil"
	"github.com/vedantkulkarni1234/website/pkg/validator"
)

// ContactHandler accepts contact-form submissions.
type ContactHandler struct {
	service *service.ContactService
	logger  *slog.Logger
}

// NewContactHandler creates a new contact HTTP handler.
func NewContactHandler(svc *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitContact handles POST /api/contact
func (h *ContactHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	// Fields are trimmed and validated by the service.
	var input service.ContactInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&input); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	msg, err := h.service.Submit(r.Context(), input)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: ContactResponse{
		ID:      msg.ID,
		Message: domain.ContactAcknowledgement,
	}})
}
