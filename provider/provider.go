// Package provider defines the cache store abstraction used by rtcache.
//
// Implementations MUST be byte-for-byte transparent: Get and GetMany must
// return exactly the []byte previously passed to Set for a key. rtcache owns
// the "<namespace>:" keyspace it is configured with; values written there by
// other code are treated as corrupt entries and deleted on read.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// GetMany returns only the keys currently present. Duplicate keys are
	// allowed and collapse into one map entry.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores value with the given TTL (<= 0 means the store's own default
	// or no expiry). May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Getter is the single-key read used by GetManyFallback.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// GetManyFallback implements GetMany with one Get per key for stores that
// have no native multi-get.
func GetManyFallback(ctx context.Context, g Getter, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if _, seen := out[k]; seen {
			continue
		}
		b, ok, err := g.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = b
		}
	}
	return out, nil
}
