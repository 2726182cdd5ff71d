package cache

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval is how often expired in-memory keys are purged
const DefaultCleanupInterval = 5 * time.Minute

// InMemoryIdempotencyStore implements IdempotencyStore on go-cache.
// Suitable for single-instance deployments and testing.
type InMemoryIdempotencyStore struct {
	items *gocache.Cache
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return NewInMemoryIdempotencyStoreWithCleanup(DefaultCleanupInterval)
}

// NewInMemoryIdempotencyStoreWithCleanup creates a store that purges expired keys every interval
func NewInMemoryIdempotencyStoreWithCleanup(interval time.Duration) *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		items: gocache.New(gocache.NoExpiration, interval),
	}
}

// MarkProcessed records key for ttl. Returns false when an unexpired entry already exists.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	if err := s.items.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// IsProcessed checks if key is recorded and not expired
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	_, found := s.items.Get(key)
	return found, nil
}

// Forget removes key
func (s *InMemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

// Close drops every entry
func (s *InMemoryIdempotencyStore) Close() error {
	s.items.Flush()
	return nil
}

// Size returns the number of entries, expired ones included until the next purge
func (s *InMemoryIdempotencyStore) Size() int {
	return s.items.ItemCount()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
