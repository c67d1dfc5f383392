package rtcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The manager calls them on hot paths.
type Hooks interface {
	// An entry was served from the cache.
	Hit(storageKey string)

	// The provider had no entry for the key.
	Miss(storageKey string)

	// A cached entry equal to the query's Empty sentinel was treated as a miss.
	SentinelMatch(storageKey string)

	// An undecodable entry was deleted and treated as a miss.
	// reason ∈ {"corrupt", "record_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// A tolerant query turned an error into an absent result.
	// reason ∈ {"not_int", "not_found"}
	Suppressed(keyTemplate, reason string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                 {}
func (NopHooks) Miss(string)                {}
func (NopHooks) SentinelMatch(string)       {}
func (NopHooks) SelfHeal(string, string)    {}
func (NopHooks) ProviderSetRejected(string) {}
func (NopHooks) Suppressed(string, string)  {}
