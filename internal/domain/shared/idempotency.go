package shared

import (
	"context"
	"time"
)

// IdempotencyStore holds client-chosen request keys. A key reserved once is
// refused until its ttl runs out, so a retried create cannot write the same
// ledger records twice.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It reports false when the key is still held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Reserved reports whether key is currently held
	Reserved(ctx context.Context, key string) (bool, error)

	Close() error
}
