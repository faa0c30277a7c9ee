// Package notify delivers contact-form messages to the storefront operators.
package notify

import (
	"context"
	"log/slog"

	"github.com/vedantkulkarni1234/website/internal/domain"
)

// Sender delivers an accepted contact message.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *domain.ContactMessage) error
}

// LogSender writes contact messages to the structured log and always succeeds.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender backed by logger.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Name returns the name of this sender.
func (s *LogSender) Name() string {
	return "log"
}

// Send logs the message metadata. The body length is logged, not the body.
func (s *LogSender) Send(ctx context.Context, msg *domain.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "contact message delivered",
		slog.String("message_id", msg.ID),
		slog.String("email", msg.Email),
		slog.String("subject", msg.Subject),
		slog.Int("message_length", len(msg.Message)),
	)
	return nil
}
