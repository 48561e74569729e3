package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers the outcome of requests carrying an idempotency key.
type IdempotencyStore interface {
	// Reserve claims key for ttl. When the key is already claimed it returns
	// reserved=false together with the stored result ("" while the first
	// request is still in flight).
	Reserve(ctx context.Context, key string, ttl time.Duration) (reserved bool, result string, err error)

	// Complete stores the result for a reserved key
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Release drops a reservation so the request can be retried
	Release(ctx context.Context, key string) error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key and its result are remembered
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
