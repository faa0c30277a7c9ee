package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/repository"
)

// DefaultLedgerNamespace prefixes every ledger key.
const DefaultLedgerNamespace = "hexstrike-cart"

// LedgerRepository implements repository.LedgerRepository using Redis.
// Lines live under "<namespace>:<session>" and the visibility flag under
// "<namespace>:<session>:open"; both share the ledger TTL.
type LedgerRepository struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// NewLedgerRepository creates a Redis-backed ledger repository. An empty
// namespace falls back to DefaultLedgerNamespace.
func NewLedgerRepository(client redis.UniversalClient, namespace string, ttl time.Duration) *LedgerRepository {
	if namespace == "" {
		namespace = DefaultLedgerNamespace
	}
	return &LedgerRepository{client: client, namespace: namespace, ttl: ttl}
}

func (r *LedgerRepository) linesKey(sessionID string) string {
	return r.namespace + ":" + sessionID
}

func (r *LedgerRepository) openKey(sessionID string) string {
	return r.namespace + ":" + sessionID + ":open"
}

// Get loads the ledger for a session.
func (r *LedgerRepository) Get(ctx context.Context, sessionID string) (domain.Ledger, error) {
	return r.read(ctx, r.client, sessionID)
}

// read loads both ledger keys through c, which is the client itself or a
// WATCHing transaction.
func (r *LedgerRepository) read(ctx context.Context, c redis.StringCmdable, sessionID string) (domain.Ledger, error) {
	ledger := domain.NewLedger()

	data, err := c.Get(ctx, r.linesKey(sessionID)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return domain.Ledger{}, fmt.Errorf("redis get ledger: %w", err)
	default:
		decoded, err := domain.DecodeLedger(data)
		if err != nil {
			return domain.Ledger{}, fmt.Errorf("decode ledger for session %s: %w", sessionID, err)
		}
		ledger = decoded
	}

	open, err := c.Get(ctx, r.openKey(sessionID)).Bool()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.Ledger{}, fmt.Errorf("redis get ledger visibility: %w", err)
	}

	return ledger.WithOpen(open), nil
}

// Update reads the ledger under WATCH, lets fn decide the writes and commits
// them in MULTI/EXEC. A concurrent change to either key restarts the cycle.
func (r *LedgerRepository) Update(ctx context.Context, sessionID string, fn repository.LedgerUpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := r.read(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		w := &pendingLedgerWrites{}
		if err := fn(current, w); err != nil {
			return err
		}
		if w.empty() {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if w.lines != nil {
				if err := r.writeLines(ctx, pipe, sessionID, *w.lines); err != nil {
					return err
				}
			}
			if w.open != nil {
				pipe.Set(ctx, r.openKey(sessionID), *w.open, r.ttl)
			}
			return nil
		})
		return err
	}

	if err := watch(ctx, r.client, txf, r.linesKey(sessionID), r.openKey(sessionID)); err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}
	return nil
}

// SaveLines writes the ledger lines with the configured TTL. An empty ledger
// removes the key rather than storing an empty document.
func (r *LedgerRepository) SaveLines(ctx context.Context, sessionID string, ledger domain.Ledger) error {
	return r.writeLines(ctx, r.client, sessionID, ledger)
}

func (r *LedgerRepository) writeLines(ctx context.Context, c redis.Cmdable, sessionID string, ledger domain.Ledger) error {
	if ledger.IsEmpty() {
		if err := c.Del(ctx, r.linesKey(sessionID)).Err(); err != nil {
			return fmt.Errorf("redis del ledger: %w", err)
		}
		return nil
	}

	data, err := domain.EncodeLedger(ledger)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, r.linesKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set ledger: %w", err)
	}
	return nil
}

// SaveVisibility writes the drawer flag with the configured TTL.
func (r *LedgerRepository) SaveVisibility(ctx context.Context, sessionID string, open bool) error {
	if err := r.client.Set(ctx, r.openKey(sessionID), open, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set ledger visibility: %w", err)
	}
	return nil
}

// Delete removes the ledger and its visibility flag.
func (r *LedgerRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.linesKey(sessionID), r.openKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del ledger: %w", err)
	}
	return nil
}

// pendingLedgerWrites collects an update's writes until they can be queued
// inside MULTI.
type pendingLedgerWrites struct {
	lines *domain.Ledger
	open  *bool
}

func (w *pendingLedgerWrites) SaveLines(_ context.Context, _ string, ledger domain.Ledger) error {
	w.lines = &ledger
	return nil
}

func (w *pendingLedgerWrites) SaveVisibility(_ context.Context, _ string, open bool) error {
	w.open = &open
	return nil
}

func (w *pendingLedgerWrites) empty() bool {
	return w.lines == nil && w.open == nil
}
