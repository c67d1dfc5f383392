// Package promhooks exports rtcache events as Prometheus counters:
//
//	rtcache_events_total{namespace, event}
//	rtcache_self_heals_total{namespace, reason}
//	rtcache_suppressed_total{namespace, reason}
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/rtcache"
)

type Hooks struct {
	events     *prometheus.CounterVec
	selfHeals  *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	ns         string
}

var _ rtcache.Hooks = (*Hooks)(nil)

// New registers the counters on reg (prometheus.DefaultRegisterer if nil),
// labelled with namespace.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		ns: namespace,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtcache",
			Name:      "events_total",
			Help:      "Cache lookups by outcome.",
		}, []string{"namespace", "event"}),
		selfHeals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtcache",
			Name:      "self_heals_total",
			Help:      "Undecodable entries deleted.",
		}, []string{"namespace", "reason"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtcache",
			Name:      "suppressed_total",
			Help:      "Errors turned into absent results by tolerant queries.",
		}, []string{"namespace", "reason"}),
	}
	for _, c := range []prometheus.Collector{h.events, h.selfHeals, h.suppressed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Hit(string)                 { h.events.WithLabelValues(h.ns, "hit").Inc() }
func (h *Hooks) Miss(string)                { h.events.WithLabelValues(h.ns, "miss").Inc() }
func (h *Hooks) SentinelMatch(string)       { h.events.WithLabelValues(h.ns, "sentinel_match").Inc() }
func (h *Hooks) ProviderSetRejected(string) { h.events.WithLabelValues(h.ns, "set_rejected").Inc() }

func (h *Hooks) SelfHeal(_, reason string) {
	h.selfHeals.WithLabelValues(h.ns, reason).Inc()
}

func (h *Hooks) Suppressed(_, reason string) {
	h.suppressed.WithLabelValues(h.ns, reason).Inc()
}
