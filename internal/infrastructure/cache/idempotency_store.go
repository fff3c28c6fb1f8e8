package cache

import (
	"context"
	"time"
)

// IdempotencyStore deduplicates allocation requests that carry an
// X-Idempotency-Key header. A key is marked the first time its request is
// accepted; replays within the TTL are rejected before any stock moves.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a key has already been processed.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
