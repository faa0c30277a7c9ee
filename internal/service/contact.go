package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/event"
	"github.com/vedantkulkarni1234/website/internal/notify"
	"github.com/vedantkulkarni1234/website/pkg/validator"
)

// ContactInput holds a contact-form submission.
type ContactInput struct {
	Name    string `json:"name" validate:"required,trimmed_min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,trimmed_min=1,max=200"`
	Message string `json:"message" validate:"required,trimmed_min=10,max=5000"`
}

// ContactService accepts contact-form messages.
type ContactService struct {
	sender   notify.Sender
	producer *event.Producer
	logger   *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(sender notify.Sender, producer *event.Producer, logger *slog.Logger) *ContactService {
	return &ContactService{
		sender:   sender,
		producer: producer,
		logger:   logger,
	}
}

// Submit validates and delivers a message. Validation failures are returned
// as *validator.ValidationError.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*domain.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	msg := &domain.ContactMessage{
		ID:         uuid.New().String(),
		Name:       input.Name,
		Email:      input.Email,
		Subject:    input.Subject,
		Message:    input.Message,
		ReceivedAt: time.Now().UTC(),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("send contact message via %s: %w", s.sender.Name(), err)
	}

	if err := s.producer.PublishContactReceived(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish contact.received event",
			slog.String("message_id", msg.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "contact message received",
		slog.String("message_id", msg.ID),
		slog.String("subject", msg.Subject),
	)

	return msg, nil
}
