package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/vedantkulkarni1234/website/internal/domain"
	pkgkafka "github.com/vedantkulkarni1234/website/pkg/kafka"
	"github.com/vedantkulkarni1234/website/pkg/logger"
)

// Topics written by the storefront.
var (
	TopicCartUpdated       = pkgkafka.Topic("cart", "updated")
	TopicCartCleared       = pkgkafka.Topic("cart", "cleared")
	TopicCheckoutSubmitted = pkgkafka.Topic("checkout", "submitted")
	TopicCheckoutFailed    = pkgkafka.Topic("checkout", "failed")
	TopicContactReceived   = pkgkafka.Topic("contact", "received")
)

// Aggregate types.
const (
	AggregateTypeSession = "session"
	AggregateTypeContact = "contact_message"
)

// SourceStorefront identifies events originating from this server.
const SourceStorefront = "storefront"

// Publisher writes an event envelope to a topic. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// NopPublisher discards events. Used when Kafka is disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// LineData is a ledger line inside event payloads.
type LineData struct {
	ID        string `json:"id"`
	Kind      string `json:"type"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	UnitPrice string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID  string     `json:"session_id"`
	Lines      []LineData `json:"lines"`
	ItemCount  int        `json:"item_count"`
	TotalPrice string     `json:"total_price"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// CheckoutSubmittedData is the payload for a checkout.submitted event.
type CheckoutSubmittedData struct {
	SessionID        string     `json:"session_id"`
	PaymentSessionID string     `json:"payment_session_id"`
	Email            string     `json:"email"`
	Direct           bool       `json:"direct"`
	Lines            []LineData `json:"lines"`
	Subtotal         string     `json:"subtotal"`
	Discount         string     `json:"discount"`
	Total            string     `json:"total"`
	PromoCode        string     `json:"promo_code,omitempty"`
}

// CheckoutFailedData is the payload for a checkout.failed event.
type CheckoutFailedData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Attempts  int    `json:"attempts"`
}

// ContactReceivedData is the payload for a contact.received event.
type ContactReceivedData struct {
	MessageID string `json:"message_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func lineData(lines []domain.CartLine) []LineData {
	out := make([]LineData, len(lines))
	for i, l := range lines {
		out[i] = LineData{
			ID:        l.ID,
			Kind:      string(l.Kind),
			Slug:      l.Slug,
			Name:      l.Name,
			UnitPrice: money(l.UnitPrice),
			Quantity:  l.Quantity,
		}
	}
	return out
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, ledger domain.Ledger) error {
	return p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeSession, CartUpdatedData{
		SessionID:  sessionID,
		Lines:      lineData(ledger.Lines),
		ItemCount:  ledger.TotalItemCount(),
		TotalPrice: money(ledger.TotalPrice()),
	})
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeSession, CartClearedData{SessionID: sessionID})
}

// PublishCheckoutSubmitted publishes a checkout.submitted event after a
// successful handoff to the payment provider.
func (p *Producer) PublishCheckoutSubmitted(ctx context.Context, sessionID, email string, summary domain.Summary, paymentSessionID string) error {
	data := CheckoutSubmittedData{
		SessionID:        sessionID,
		PaymentSessionID: paymentSessionID,
		Email:            email,
		Direct:           summary.Direct,
		Lines:            lineData(summary.Lines),
		Subtotal:         money(summary.Subtotal),
		Discount:         money(summary.Discount),
		Total:            money(summary.Total),
	}
	if summary.Promo.Applied {
		data.PromoCode = summary.Promo.Code
	}
	return p.publish(ctx, TopicCheckoutSubmitted, sessionID, AggregateTypeSession, data)
}

// PublishCheckoutFailed publishes a checkout.failed event.
func (p *Producer) PublishCheckoutFailed(ctx context.Context, sessionID string, state domain.CheckoutState) error {
	return p.publish(ctx, TopicCheckoutFailed, sessionID, AggregateTypeSession, CheckoutFailedData{
		SessionID: sessionID,
		Reason:    state.FailureReason,
		Attempts:  state.Attempts,
	})
}

// PublishContactReceived publishes a contact.received event. The message
// body stays out of the payload.
func (p *Producer) PublishContactReceived(ctx context.Context, msg *domain.ContactMessage) error {
	return p.publish(ctx, TopicContactReceived, msg.ID, AggregateTypeContact, ContactReceivedData{
		MessageID: msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
	})
}
