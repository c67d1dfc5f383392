// Package rtcache is a read-through cache manager for a persistent record
// store queried by key/value filters.
//
// A Query names a cache key template and the parameters that both fill the
// template and filter the store. FromCache returns the cached entry when one
// exists, otherwise it runs the store query, caches the outcome and returns
// it. ObjectsByKeys resolves many single-record lookups with one bulk cache
// read, delegating misses to an ItemFunc (usually built with ByField).
//
// Components:
//   - Provider: byte store with TTL (Redis, Ristretto, BigCache, SQLite, LRU,
//     or a composite of tiers).
//   - Store[R]: the authoritative record store (GetOne / Filter).
//   - Codec[R]: (de)serializes one record R <-> []byte.
//
// Keys:
//
//	<ns>:k:<formatted template> - entries (absent, one record, or a list)
//	<ns>:h:<xxhash64>           - same, for keys longer than Options.MaxKeyLen
//
// Usage:
//
//	res, err := people.FromCache(ctx, rtcache.Query[Person]{
//		Key:    "person::{name}",
//		Params: rtcache.Params{"name": "Bart"},
//		One:    true,
//	})
//	if p, ok := res.One(); ok { ... }
//
// Nothing is invalidated on writes to the store; entries live until the
// provider expires or evicts them. Concurrent misses on one key may each
// query the store (last write wins) unless Options.SingleFlight is set.
package rtcache
