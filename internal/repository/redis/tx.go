package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// maxTxAttempts bounds optimistic retries. Each lost race means another
// request on the same session committed, so contention drains quickly.
const maxTxAttempts = 100

// ErrContended is returned when an optimistic transaction kept losing races
// and gave up.
var ErrContended = errors.New("redis transaction contended")

// watch runs fn under WATCH on keys and retries it from the top whenever a
// watched key changed before EXEC.
func watch(ctx context.Context, client redis.UniversalClient, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrContended
}
