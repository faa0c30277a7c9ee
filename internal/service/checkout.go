package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/event"
	"github.com/vedantkulkarni1234/website/internal/payment"
	"github.com/vedantkulkarni1234/website/internal/repository"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
	"github.com/vedantkulkarni1234/website/pkg/tracing"
	"github.com/vedantkulkarni1234/website/pkg/validator"
)

const tracerName = "github.com/vedantkulkarni1234/website/internal/service"

// guardMargin is added to the payment timeout to get the submission guard's
// lifetime, so a crashed submission frees the session on its own.
const guardMargin = 5 * time.Second

// CheckoutConfig holds the checkout settings that come from configuration.
type CheckoutConfig struct {
	Promo          domain.Promo
	Currency       string
	SuccessURL     string
	CancelURL      string
	PaymentTimeout time.Duration
}

// SubmitInput holds the parameters for a checkout submission. Direct, when
// set, buys a single catalog entry without touching the cart.
type SubmitInput struct {
	Email  string                 `json:"email" validate:"required,email"`
	Direct *domain.DirectPurchase `json:"-"`
}

// SubmitResult is returned after a successful handoff to the payment provider.
type SubmitResult struct {
	Summary          domain.Summary
	RedirectURL      string
	PaymentSessionID string
}

// CheckoutService prices checkout selections and hands them to the payment
// provider.
type CheckoutService struct {
	ledger   *LedgerService
	catalog  *CatalogService
	repo     repository.CheckoutRepository
	provider payment.Provider
	producer *event.Producer
	metrics  *CheckoutMetrics
	cfg      CheckoutConfig
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

// NewCheckoutService creates a new checkout service. metrics may be nil.
func NewCheckoutService(
	ledger *LedgerService,
	catalog *CatalogService,
	repo repository.CheckoutRepository,
	provider payment.Provider,
	producer *event.Producer,
	metrics *CheckoutMetrics,
	cfg CheckoutConfig,
	logger *slog.Logger,
) *CheckoutService {
	if cfg.Promo.Code == "" {
		cfg.Promo = domain.DefaultPromo()
	}
	return &CheckoutService{
		ledger:   ledger,
		catalog:  catalog,
		repo:     repo,
		provider: provider,
		producer: producer,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
		tracer:   tracing.Tracer(tracerName),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// ResolveCheckoutItems returns the lines a checkout prices: the single
// direct-purchase entry when direct is set, otherwise a snapshot of the cart.
func (s *CheckoutService) ResolveCheckoutItems(ctx context.Context, sessionID string, direct *domain.DirectPurchase) (domain.CheckoutSelection, error) {
	if direct != nil {
		entry, err := s.catalog.Lookup(ctx, direct.Kind, direct.Slug)
		if err != nil {
			return domain.CheckoutSelection{}, err
		}
		return domain.SelectDirect(entry), nil
	}

	ledger, err := s.ledger.Get(ctx, sessionID)
	if err != nil {
		return domain.CheckoutSelection{}, err
	}
	return domain.SelectLedger(ledger), nil
}

// Summary prices the current selection under the session's promo state.
func (s *CheckoutService) Summary(ctx context.Context, sessionID string, direct *domain.DirectPurchase) (domain.Summary, error) {
	if sessionID == "" {
		return domain.Summary{}, apperrors.InvalidInput("session id is required")
	}
	sel, err := s.ResolveCheckoutItems(ctx, sessionID, direct)
	if err != nil {
		return domain.Summary{}, err
	}
	state, err := s.state(ctx, sessionID)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(sel, s.cfg.Promo, state), nil
}

// ApplyPromo applies code for the rest of the session. A code that does not
// match leaves the state unchanged and returns INVALID_PROMO_CODE; applying
// the accepted code twice is a no-op.
func (s *CheckoutService) ApplyPromo(ctx context.Context, sessionID, code string, direct *domain.DirectPurchase) (domain.Summary, error) {
	if sessionID == "" {
		return domain.Summary{}, apperrors.InvalidInput("session id is required")
	}

	code = strings.TrimSpace(code)
	if !s.cfg.Promo.Accepts(code) {
		s.metrics.promo(false)
		return domain.Summary{}, apperrors.InvalidPromoCode(code)
	}
	s.metrics.promo(true)

	state, err := s.state(ctx, sessionID)
	if err != nil {
		return domain.Summary{}, err
	}
	if !state.Promo.Applied {
		// Only the promo changes; a submission running meanwhile keeps its status.
		state, err = s.repo.UpdateState(ctx, sessionID, func(cur domain.CheckoutState) domain.CheckoutState {
			return cur.ApplyPromo(code, s.now())
		})
		if err != nil {
			return domain.Summary{}, fmt.Errorf("save checkout state: %w", err)
		}
		if state, err = s.settle(ctx, sessionID, state); err != nil {
			return domain.Summary{}, err
		}
		s.logger.InfoContext(ctx, "promo code applied",
			slog.String("session_id", sessionID),
			slog.String("code", code),
		)
	}

	sel, err := s.ResolveCheckoutItems(ctx, sessionID, direct)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(sel, s.cfg.Promo, state), nil
}

// Submit resolves the selection once, takes the session's submission guard
// and asks the payment provider for a hosted payment page.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, input SubmitInput) (*SubmitResult, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	input.Email = strings.TrimSpace(input.Email)
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput("a valid email address is required")
	}
	isDirect := input.Direct != nil

	sel, err := s.ResolveCheckoutItems(ctx, sessionID, input.Direct)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() {
		s.metrics.submission(resultEmpty, isDirect)
		return nil, apperrors.EmptyCart()
	}

	acquired, err := s.repo.AcquireSubmission(ctx, sessionID, s.cfg.PaymentTimeout+guardMargin)
	if err != nil {
		return nil, fmt.Errorf("acquire submission guard: %w", err)
	}
	if !acquired {
		s.metrics.submission(resultConflict, isDirect)
		return nil, apperrors.Conflict("checkout is already being submitted")
	}

	// Once the guard is held the handoff runs to completion, bounded by the
	// payment timeout, even if the shopper's request goes away.
	bgCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.repo.ReleaseSubmission(bgCtx, sessionID); err != nil {
			s.logger.ErrorContext(bgCtx, "failed to release submission guard",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}()

	// Each transition below re-reads the stored state, so a promo applied
	// while the provider is being called is kept.
	submissionID := s.newID()
	state, err := s.repo.UpdateState(ctx, sessionID, func(cur domain.CheckoutState) domain.CheckoutState {
		return cur.BeginSubmission(submissionID, s.now())
	})
	if err != nil {
		return nil, fmt.Errorf("save checkout state: %w", err)
	}

	summary := domain.Summarize(sel, s.cfg.Promo, state)
	sess, err := s.createPaymentSession(bgCtx, sessionID, input.Email, summary, state)
	if err != nil {
		reason := err.Error()
		failed := func(cur domain.CheckoutState) domain.CheckoutState { return cur.Failed(reason, s.now()) }
		recorded, saveErr := s.repo.UpdateState(bgCtx, sessionID, failed)
		if saveErr != nil {
			s.logger.ErrorContext(bgCtx, "failed to record checkout failure",
				slog.String("session_id", sessionID),
				slog.String("error", saveErr.Error()),
			)
			recorded = failed(state)
		}
		if pubErr := s.producer.PublishCheckoutFailed(bgCtx, sessionID, recorded); pubErr != nil {
			s.logger.ErrorContext(bgCtx, "failed to publish checkout.failed event",
				slog.String("session_id", sessionID),
				slog.String("error", pubErr.Error()),
			)
		}
		s.metrics.submission(resultFailed, isDirect)
		s.logger.WarnContext(ctx, "checkout submission failed",
			slog.String("session_id", sessionID),
			slog.String("submission_id", submissionID),
			slog.Int("attempt", recorded.Attempts),
			slog.String("error", reason),
		)
		return nil, apperrors.CheckoutFailed(err)
	}

	redirected := func(cur domain.CheckoutState) domain.CheckoutState {
		return cur.Redirected(sess.ID, sess.RedirectURL, s.now())
	}
	if _, err := s.repo.UpdateState(bgCtx, sessionID, redirected); err != nil {
		s.logger.ErrorContext(bgCtx, "failed to record checkout redirect",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	summary.Status = domain.CheckoutRedirected
	if err := s.producer.PublishCheckoutSubmitted(bgCtx, sessionID, input.Email, summary, sess.ID); err != nil {
		s.logger.ErrorContext(bgCtx, "failed to publish checkout.submitted event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	s.metrics.submission(resultRedirected, isDirect)

	s.logger.InfoContext(ctx, "checkout submitted",
		slog.String("session_id", sessionID),
		slog.String("payment_session_id", sess.ID),
		slog.Bool("direct", isDirect),
		slog.String("total", summary.Total.StringFixed(2)),
	)

	return &SubmitResult{
		Summary:          summary,
		RedirectURL:      sess.RedirectURL,
		PaymentSessionID: sess.ID,
	}, nil
}

// createPaymentSession calls the provider under the configured timeout. The
// idempotency key carries the submission id, so it never repeats for a
// session even after its checkout state has expired.
func (s *CheckoutService) createPaymentSession(ctx context.Context, sessionID, email string, summary domain.Summary, state domain.CheckoutState) (*payment.Session, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.CreatePaymentSession",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Bool("checkout.direct", summary.Direct),
			attribute.Int("checkout.attempt", state.Attempts),
			attribute.String("checkout.submission_id", state.SubmissionID),
			attribute.Int("checkout.item_count", summary.ItemCount),
		),
	)
	defer span.End()

	if s.cfg.PaymentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.PaymentTimeout)
		defer cancel()
	}

	in := &payment.SessionInput{
		IdempotencyKey: sessionID + ":" + state.SubmissionID,
		CustomerEmail:  email,
		Currency:       s.cfg.Currency,
		Lines:          payment.LineItems(summary.Lines),
		DiscountAmount: domain.ToMinorUnits(summary.Discount),
		TotalAmount:    domain.ToMinorUnits(summary.Total),
		SuccessURL:     s.cfg.SuccessURL,
		CancelURL:      s.cfg.CancelURL,
		Metadata:       map[string]string{"session_id": sessionID},
	}
	if summary.Promo.Applied {
		in.Metadata["promo_code"] = summary.Promo.Code
	}

	start := time.Now()
	sess, err := s.provider.CreateSession(ctx, in)
	s.metrics.paymentCall(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if sess == nil || sess.RedirectURL == "" {
		err := fmt.Errorf("payment provider returned no redirect url")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("payment.session_id", sess.ID))
	return sess, nil
}

// state reads the session's checkout state. A corrupt document is logged
// and reset to idle rather than failing every checkout request.
func (s *CheckoutService) state(ctx context.Context, sessionID string) (domain.CheckoutState, error) {
	state, err := s.repo.GetState(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrCorruptCheckoutState):
		s.logger.WarnContext(ctx, "discarding corrupt checkout state",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		// UpdateState replaces an unreadable document with an idle state.
		state, err = s.repo.UpdateState(ctx, sessionID, func(cur domain.CheckoutState) domain.CheckoutState { return cur })
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to reset corrupt checkout state",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
			state = domain.NewCheckoutState()
		}
	case err != nil:
		return domain.CheckoutState{}, fmt.Errorf("get checkout state: %w", err)
	}
	return s.settle(ctx, sessionID, state)
}

// settle reports a "submitting" status whose guard has expired as idle; it
// belongs to an abandoned submission.
func (s *CheckoutService) settle(ctx context.Context, sessionID string, state domain.CheckoutState) (domain.CheckoutState, error) {
	if state.Status != domain.CheckoutSubmitting {
		return state, nil
	}

	held, err := s.repo.SubmissionHeld(ctx, sessionID)
	if err != nil {
		return domain.CheckoutState{}, fmt.Errorf("check submission guard: %w", err)
	}
	if !held {
		state.Status = domain.CheckoutIdle
	}
	return state, nil
}
