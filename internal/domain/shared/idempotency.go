package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys for a while so a retried
// request is recognised instead of being applied twice
type IdempotencyStore interface {
	// MarkProcessed records the key with a TTL.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key, used when the guarded request failed and may be retried
	Forget(ctx context.Context, key string) error

	// Close releases resources
	Close() error
}
