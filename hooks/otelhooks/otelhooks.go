// Package otelhooks counts rtcache events with OpenTelemetry metrics.
//
//	h, err := otelhooks.New(nil, attribute.String("namespace", "person"))
//	m, _ := rtcache.New[Person](rtcache.Options[Person]{..., Hooks: h})
//
// A nil meter uses the global MeterProvider.
package otelhooks

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/unkn0wn-root/rtcache"
)

const scope = "github.com/unkn0wn-root/rtcache"

type Hooks struct {
	hits, misses, sentinels metric.Int64Counter
	selfHeals, rejected     metric.Int64Counter
	suppressed              metric.Int64Counter

	base metric.MeasurementOption
	set  attribute.Set
}

var _ rtcache.Hooks = (*Hooks)(nil)

// New registers the counters on meter. attrs are attached to every
// measurement.
func New(meter metric.Meter, attrs ...attribute.KeyValue) (*Hooks, error) {
	if meter == nil {
		meter = otel.Meter(scope)
	}
	h := &Hooks{set: attribute.NewSet(attrs...)}
	h.base = metric.WithAttributeSet(h.set)

	var err error
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{event}"))
		return c
	}
	h.hits = counter("rtcache.hits", "Entries served from the cache.")
	h.misses = counter("rtcache.misses", "Lookups the provider had no entry for.")
	h.sentinels = counter("rtcache.sentinel_matches", "Cached entries equal to the query sentinel.")
	h.selfHeals = counter("rtcache.self_heals", "Undecodable entries deleted.")
	h.rejected = counter("rtcache.set_rejected", "Writes the provider declined.")
	h.suppressed = counter("rtcache.suppressed", "Errors turned into absent results by tolerant queries.")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hooks) withReason(reason string) metric.MeasurementOption {
	kvs := append(h.set.ToSlice(), attribute.String("reason", reason))
	return metric.WithAttributes(kvs...)
}

func (h *Hooks) Hit(string)  { h.hits.Add(context.Background(), 1, h.base) }
func (h *Hooks) Miss(string) { h.misses.Add(context.Background(), 1, h.base) }
func (h *Hooks) SentinelMatch(string) {
	h.sentinels.Add(context.Background(), 1, h.base)
}
func (h *Hooks) SelfHeal(_, reason string) {
	h.selfHeals.Add(context.Background(), 1, h.withReason(reason))
}
func (h *Hooks) ProviderSetRejected(string) {
	h.rejected.Add(context.Background(), 1, h.base)
}
func (h *Hooks) Suppressed(_, reason string) {
	h.suppressed.Add(context.Background(), 1, h.withReason(reason))
}
