package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vedantkulkarni1234/website/internal/domain"
)

// DefaultCheckoutNamespace prefixes every checkout key.
const DefaultCheckoutNamespace = "hexstrike-checkout"

// CheckoutRepository implements repository.CheckoutRepository using Redis.
type CheckoutRepository struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// NewCheckoutRepository creates a Redis-backed checkout repository. State
// expires after ttl of inactivity.
func NewCheckoutRepository(client redis.UniversalClient, namespace string, ttl time.Duration) *CheckoutRepository {
	if namespace == "" {
		namespace = DefaultCheckoutNamespace
	}
	return &CheckoutRepository{client: client, namespace: namespace, ttl: ttl}
}

func (r *CheckoutRepository) stateKey(sessionID string) string {
	return r.namespace + ":" + sessionID
}

func (r *CheckoutRepository) lockKey(sessionID string) string {
	return r.namespace + ":" + sessionID + ":submitting"
}

// GetState loads the checkout state for a session.
func (r *CheckoutRepository) GetState(ctx context.Context, sessionID string) (domain.CheckoutState, error) {
	return r.read(ctx, r.client, sessionID)
}

func (r *CheckoutRepository) read(ctx context.Context, c redis.StringCmdable, sessionID string) (domain.CheckoutState, error) {
	data, err := c.Get(ctx, r.stateKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewCheckoutState(), nil
		}
		return domain.CheckoutState{}, fmt.Errorf("redis get checkout state: %w", err)
	}

	var state domain.CheckoutState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.CheckoutState{}, fmt.Errorf("decode checkout state for session %s: %w: %w", sessionID, domain.ErrCorruptCheckoutState, err)
	}
	if state.Status == "" {
		state.Status = domain.CheckoutIdle
	}
	return state, nil
}

// UpdateState reads the state under WATCH, applies fn and writes the result
// in MULTI/EXEC, retrying on a concurrent write. A corrupt document is
// treated as an idle state and overwritten.
func (r *CheckoutRepository) UpdateState(ctx context.Context, sessionID string, fn func(domain.CheckoutState) domain.CheckoutState) (domain.CheckoutState, error) {
	key := r.stateKey(sessionID)
	var next domain.CheckoutState

	txf := func(tx *redis.Tx) error {
		current, err := r.read(ctx, tx, sessionID)
		switch {
		case errors.Is(err, domain.ErrCorruptCheckoutState):
			current = domain.NewCheckoutState()
		case err != nil:
			return err
		}

		next = fn(current)
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal checkout state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	if err := watch(ctx, r.client, txf, key); err != nil {
		return domain.CheckoutState{}, fmt.Errorf("update checkout state: %w", err)
	}
	return next, nil
}

// AcquireSubmission sets the guard key if absent.
func (r *CheckoutRepository) AcquireSubmission(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.lockKey(sessionID), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis acquire submission guard: %w", err)
	}
	return ok, nil
}

// ReleaseSubmission deletes the guard key.
func (r *CheckoutRepository) ReleaseSubmission(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.lockKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis release submission guard: %w", err)
	}
	return nil
}

// SubmissionHeld reports whether the guard key exists.
func (r *CheckoutRepository) SubmissionHeld(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.lockKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check submission guard: %w", err)
	}
	return n > 0, nil
}
