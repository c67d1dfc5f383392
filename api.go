package rtcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/rtcache/codec"
	pr "github.com/unkn0wn-root/rtcache/provider"
	st "github.com/unkn0wn-root/rtcache/store"
)

// Params are named query parameters: they fill the key template and filter
// the store.
type Params = st.Filter

// SetCostFunc computes the provider cost of an entry (Ristretto admission).
type SetCostFunc func(storageKey string, raw []byte, kind Kind, records int) int64

// ItemFunc resolves one key that the bulk cache read missed.
type ItemFunc[R any] func(ctx context.Context, key any) (Result[R], error)

// Manager is the read-through API over one record type R.
type Manager[R any] interface {
	Enabled() bool
	Close(context.Context) error

	// FromCache resolves q against the cache, then the store. At most one
	// store query runs per call. A tolerated not-found is cached as absent
	// unless q.SkipAbsent is set.
	FromCache(ctx context.Context, q Query[R]) (Result[R], error)

	// ObjectsByKeys returns one result per key, in input order, reading all
	// keys from the cache at once and calling b.Get for each miss.
	ObjectsByKeys(ctx context.Context, keys []any, b Batch[R]) ([]Result[R], error)
}

// Query describes one read-through lookup.
type Query[R any] struct {
	// Key is the cache key template, e.g. "person::{name}".
	Key string
	// Params fill Key and filter the store.
	Params Params
	// Const is merged into the store filter only; it does not affect the key.
	// On a name clash Const wins.
	Const Params
	// Only restricts the fetched fields (see store.Store).
	Only []string
	// One runs GetOne and caches a single record; otherwise Filter and a list.
	One bool
	// Strict surfaces *CoercionError and ErrNotFound. The default (tolerant)
	// policy returns an absent result for both.
	Strict bool
	// IntOnly converts every Params value to int64 before key formatting.
	IntOnly bool
	// Empty, if set, is a sentinel: a cached entry equal to it is a miss.
	// Comparison is on encoded bytes, so the codec must be deterministic.
	Empty *Result[R]
	// SkipAbsent returns tolerant not-found results without caching them.
	SkipAbsent bool
	// TTL overrides Options.DefaultTTL for entries written by this query.
	TTL time.Duration
}

// Batch describes an ObjectsByKeys call.
type Batch[R any] struct {
	// Key is a template with one placeholder named Field, e.g. "person::{pk}".
	Key string
	// Field is the placeholder name; "" => "pk".
	Field string
	// Empty is the sentinel, as in Query.
	Empty *Result[R]
	// Get resolves misses. Required.
	Get ItemFunc[R]
}

// Options tune the manager.
// Namespace, Provider, Store and Codec are required; others have sensible defaults.
type Options[R any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions. e.g. "person", "order"
	Provider  pr.Provider
	Store     st.Store[R]
	Codec     c.Codec[R]

	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
	DefaultTTL     time.Duration // 0 => 10m
	MaxKeyLen      int           // 0 => 200; < 0 never hashes keys
	ComputeSetCost SetCostFunc   // default 1
	Disabled       bool          // every call goes to the store; nothing is cached

	// SingleFlight collapses concurrent misses on the same storage key into
	// one store query whose result all callers share. The query runs detached
	// from the first caller's cancellation (values are kept), and every
	// caller gets its own copy of a list result. Off by default: concurrent
	// misses then each query the store and the last write wins.
	SingleFlight bool
}

func New[R any](opts Options[R]) (Manager[R], error) {
	return newManager[R](opts)
}

// ByField builds the usual Batch.Get: a single-record FromCache with
// q.Params replaced by {field: key}. Key and the other Query settings of q
// apply to every call.
func ByField[R any](m Manager[R], q Query[R], field string) ItemFunc[R] {
	field = coalesce(field, defaultField)
	return func(ctx context.Context, key any) (Result[R], error) {
		qq := q
		qq.Params = Params{field: key}
		qq.One = true
		return m.FromCache(ctx, qq)
	}
}
