package cache

import (
	"context"
	"time"
)

// Store is a TTL cache for provider payloads. Values are serialized on
// Set and decoded into dest on Get, so a cached entry is only ever
// replaced wholesale, never mutated through an alias.
type Store interface {
	// Get decodes the entry for key into dest. False when the key is
	// absent or expired.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the entry for key.
	Delete(ctx context.Context, key string) error

	// CleanExpired removes entries past their TTL and returns how many
	// were dropped. Backends that expire natively return 0.
	CleanExpired(ctx context.Context) (int, error)
}
