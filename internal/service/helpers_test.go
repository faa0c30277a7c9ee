package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/event"
	"github.com/vedantkulkarni1234/website/internal/payment"
	"github.com/vedantkulkarni1234/website/internal/repository"
	"github.com/vedantkulkarni1234/website/internal/repository/memory"
	pkgkafka "github.com/vedantkulkarni1234/website/pkg/kafka"
)

const testSession = "5f0c3a52-8d3e-4c55-9e0a-2f4f6d1b7a10"

// --- Mock Repositories ---

type mockLedgerRepository struct {
	mock.Mock
}

func (m *mockLedgerRepository) Get(ctx context.Context, sessionID string) (domain.Ledger, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Ledger), args.Error(1)
}

func (m *mockLedgerRepository) SaveLines(ctx context.Context, sessionID string, ledger domain.Ledger) error {
	return m.Called(ctx, sessionID, ledger).Error(0)
}

func (m *mockLedgerRepository) SaveVisibility(ctx context.Context, sessionID string, open bool) error {
	return m.Called(ctx, sessionID, open).Error(0)
}

// Update hands the mocked Get result to fn with the mock itself as writer,
// so expectations on SaveLines and SaveVisibility still apply.
func (m *mockLedgerRepository) Update(ctx context.Context, sessionID string, fn repository.LedgerUpdateFunc) error {
	current, err := m.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	return fn(current, m)
}

func (m *mockLedgerRepository) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// mockCheckoutRepository remembers the last state written through
// UpdateState; before the first write, UpdateState starts from the mocked
// GetState result. Expectations on "UpdateState" match the written state.
type mockCheckoutRepository struct {
	mock.Mock
	mu      sync.Mutex
	written *domain.CheckoutState
}

func (m *mockCheckoutRepository) GetState(ctx context.Context, sessionID string) (domain.CheckoutState, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.CheckoutState), args.Error(1)
}

func (m *mockCheckoutRepository) UpdateState(ctx context.Context, sessionID string, fn func(domain.CheckoutState) domain.CheckoutState) (domain.CheckoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current domain.CheckoutState
	if m.written != nil {
		current = *m.written
	} else {
		got, err := m.GetState(ctx, sessionID)
		switch {
		case errors.Is(err, domain.ErrCorruptCheckoutState):
			current = domain.NewCheckoutState()
		case err != nil:
			return domain.CheckoutState{}, err
		default:
			current = got
		}
	}

	next := fn(current)
	if err := m.Called(ctx, sessionID, next).Error(0); err != nil {
		return domain.CheckoutState{}, err
	}
	m.written = &next
	return next, nil
}

func (m *mockCheckoutRepository) AcquireSubmission(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, sessionID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockCheckoutRepository) ReleaseSubmission(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockCheckoutRepository) SubmissionHeld(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) ListExtensions(ctx context.Context, filter domain.ExtensionFilter) ([]domain.Extension, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Extension), args.Error(1)
}

func (m *mockCatalogRepository) GetExtension(ctx context.Context, slug string) (*domain.Extension, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extension), args.Error(1)
}

func (m *mockCatalogRepository) ListBundles(ctx context.Context) ([]domain.Bundle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bundle), args.Error(1)
}

func (m *mockCatalogRepository) GetBundle(ctx context.Context, slug string) (*domain.Bundle, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bundle), args.Error(1)
}

// --- Mock Collaborators ---

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateSession(ctx context.Context, in *payment.SessionInput) (*payment.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Name() string { return "mock" }

func (m *mockSender) Send(ctx context.Context, msg *domain.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}

// recordingPublisher captures events instead of writing to Kafka.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ *pkgkafka.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.topics = append(r.topics, topic)
	return nil
}

func (r *recordingPublisher) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProducer() (*event.Producer, *recordingPublisher) {
	rec := &recordingPublisher{}
	return event.NewProducer(rec, newTestLogger()), rec
}

func seedCatalogService() *CatalogService {
	repo, err := memory.NewCatalogRepository()
	if err != nil {
		panic(err)
	}
	return NewCatalogService(repo, newTestLogger())
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func radar() domain.LineCandidate {
	return domain.LineCandidate{ID: "ext-001", Kind: domain.KindExtension, Slug: "js-recon-radar", Name: "JS Recon Radar", UnitPrice: price("29.99")}
}

func sinkTracker() domain.LineCandidate {
	return domain.LineCandidate{ID: "ext-006", Kind: domain.KindExtension, Slug: "dom-sink-tracker", Name: "DOM Sink Tracker", UnitPrice: price("24.99")}
}
