package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/event"
	"github.com/vedantkulkarni1234/website/internal/repository"
	"github.com/vedantkulkarni1234/website/internal/store"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
)

// LedgerService implements the per-session cart operations. Every mutation
// loads the session's ledger into a fresh store, dispatches a pure
// transition and lets a subscriber persist the result.
type LedgerService struct {
	repo     repository.LedgerRepository
	catalog  *CatalogService
	producer *event.Producer
	logger   *slog.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(repo repository.LedgerRepository, catalog *CatalogService, producer *event.Producer, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		repo:     repo,
		catalog:  catalog,
		producer: producer,
		logger:   logger,
	}
}

// Get returns the session's ledger. Nothing stored yields an empty ledger.
func (s *LedgerService) Get(ctx context.Context, sessionID string) (domain.Ledger, error) {
	if sessionID == "" {
		return domain.Ledger{}, apperrors.InvalidInput("session id is required")
	}
	return s.load(ctx, sessionID)
}

// AddCatalogItem adds one unit of a catalog entry, snapshotting its name and
// effective price.
func (s *LedgerService) AddCatalogItem(ctx context.Context, sessionID string, kind domain.Kind, slug string) (domain.Ledger, error) {
	if sessionID == "" {
		return domain.Ledger{}, apperrors.InvalidInput("session id is required")
	}
	entry, err := s.catalog.Lookup(ctx, kind, slug)
	if err != nil {
		return domain.Ledger{}, err
	}
	return s.AddItem(ctx, sessionID, entry.Candidate())
}

// AddItem adds one unit of c. An existing line with the same id is
// incremented and keeps its original snapshot.
func (s *LedgerService) AddItem(ctx context.Context, sessionID string, c domain.LineCandidate) (domain.Ledger, error) {
	if err := c.Validate(); err != nil {
		return domain.Ledger{}, apperrors.InvalidInput(err.Error())
	}
	ledger, err := s.mutate(ctx, sessionID, func(l domain.Ledger) domain.Ledger { return l.AddItem(c) })
	if err != nil {
		return domain.Ledger{}, err
	}

	line, _ := ledger.Find(c.ID)
	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", c.ID),
		slog.String("type", string(c.Kind)),
		slog.Int("quantity", line.Quantity),
	)
	return ledger, nil
}

// RemoveItem drops the line with id. An unknown id is a no-op.
func (s *LedgerService) RemoveItem(ctx context.Context, sessionID, id string) (domain.Ledger, error) {
	ledger, err := s.mutate(ctx, sessionID, func(l domain.Ledger) domain.Ledger { return l.RemoveItem(id) })
	if err != nil {
		return domain.Ledger{}, err
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", id),
	)
	return ledger, nil
}

// UpdateQuantity sets the line's quantity exactly; zero or less removes it.
func (s *LedgerService) UpdateQuantity(ctx context.Context, sessionID, id string, quantity int) (domain.Ledger, error) {
	ledger, err := s.mutate(ctx, sessionID, func(l domain.Ledger) domain.Ledger { return l.UpdateQuantity(id, quantity) })
	if err != nil {
		return domain.Ledger{}, err
	}

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sessionID),
		slog.String("item_id", id),
		slog.Int("quantity", quantity),
	)
	return ledger, nil
}

// Clear empties the ledger. The drawer visibility is left as it was.
func (s *LedgerService) Clear(ctx context.Context, sessionID string) (domain.Ledger, error) {
	ledger, err := s.mutate(ctx, sessionID, domain.Ledger.Clear)
	if err != nil {
		return domain.Ledger{}, err
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("session_id", sessionID))
	return ledger, nil
}

// Toggle flips the drawer visibility flag.
func (s *LedgerService) Toggle(ctx context.Context, sessionID string) (domain.Ledger, error) {
	return s.mutate(ctx, sessionID, domain.Ledger.Toggle)
}

// Open shows the drawer.
func (s *LedgerService) Open(ctx context.Context, sessionID string) (domain.Ledger, error) {
	return s.mutate(ctx, sessionID, func(l domain.Ledger) domain.Ledger { return l.WithOpen(true) })
}

// Close hides the drawer.
func (s *LedgerService) Close(ctx context.Context, sessionID string) (domain.Ledger, error) {
	return s.mutate(ctx, sessionID, func(l domain.Ledger) domain.Ledger { return l.WithOpen(false) })
}

// load reads the ledger. A corrupt document is discarded so the shopper can
// keep going with an empty cart.
func (s *LedgerService) load(ctx context.Context, sessionID string) (domain.Ledger, error) {
	ledger, err := s.repo.Get(ctx, sessionID)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, domain.ErrCorruptLedger) {
		return domain.Ledger{}, fmt.Errorf("get ledger: %w", err)
	}

	s.discard(ctx, sessionID, err)
	return domain.NewLedger(), nil
}

func (s *LedgerService) discard(ctx context.Context, sessionID string, cause error) {
	s.logger.WarnContext(ctx, "discarding corrupt cart document",
		slog.String("session_id", sessionID),
		slog.String("error", cause.Error()),
	)
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete corrupt cart document",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// mutate runs action on the stored ledger inside a repository update, so
// concurrent requests for one session are applied one after another. The
// store's persist subscriber hands changes to the update; events go out
// once the update has committed.
func (s *LedgerService) mutate(ctx context.Context, sessionID string, action store.Action[domain.Ledger]) (domain.Ledger, error) {
	if sessionID == "" {
		return domain.Ledger{}, apperrors.InvalidInput("session id is required")
	}

	var prev, next domain.Ledger
	update := func(current domain.Ledger, w repository.LedgerWriter) error {
		st := store.New(current, domain.Ledger.Equal)
		st.Subscribe(s.persist(sessionID, w))

		var err error
		prev = current
		next, err = st.Dispatch(ctx, action)
		return err
	}

	err := s.repo.Update(ctx, sessionID, update)
	if errors.Is(err, domain.ErrCorruptLedger) {
		s.discard(ctx, sessionID, err)
		err = s.repo.Update(ctx, sessionID, update)
	}
	if err != nil {
		return domain.Ledger{}, err
	}

	s.announce(ctx, sessionID, prev, next)
	return next, nil
}

// persist writes whichever parts of the ledger changed.
func (s *LedgerService) persist(sessionID string, w repository.LedgerWriter) store.Listener[domain.Ledger] {
	return func(ctx context.Context, prev, next domain.Ledger) error {
		if !prev.SameLines(next) {
			if err := w.SaveLines(ctx, sessionID, next); err != nil {
				return fmt.Errorf("save ledger: %w", err)
			}
		}
		if prev.Open != next.Open {
			if err := w.SaveVisibility(ctx, sessionID, next.Open); err != nil {
				return fmt.Errorf("save ledger visibility: %w", err)
			}
		}
		return nil
	}
}

// announce publishes line changes. Publishing failures are logged only.
func (s *LedgerService) announce(ctx context.Context, sessionID string, prev, next domain.Ledger) {
	if prev.SameLines(next) {
		return
	}

	if next.IsEmpty() {
		if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	if err := s.producer.PublishCartUpdated(ctx, sessionID, next); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}
