// Package promhooks exports catalog events as Prometheus counters labelled by
// key family, never by raw key.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/bookcache"
)

type Hooks struct {
	lookups       *prometheus.CounterVec
	unavailable   *prometheus.CounterVec
	discarded     *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

var _ bookcache.Hooks = (*Hooks)(nil)

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	h := &Hooks{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Cache lookups by key family and result (hit, miss).",
			},
			[]string{"family", "result"},
		),
		unavailable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "unavailable_total",
				Help:      "Cache calls that failed and degraded to the store.",
			},
			[]string{"family", "op"},
		),
		discarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "entries_discarded_total",
				Help:      "Cached entries ignored as unusable.",
			},
			[]string{"family", "reason"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "set_rejected_total",
				Help:      "Writes declined by the cache backend.",
			},
			[]string{"family"},
		),
		invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "invalidate_failures_total",
				Help:      "Deletes after a committed write that did not reach the cache.",
			},
			[]string{"family"},
		),
	}

	for _, c := range []prometheus.Collector{h.lookups, h.unavailable, h.discarded, h.rejected, h.invalidations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// MustNew is like New but panics on a registration error.
func MustNew(reg prometheus.Registerer, namespace string) *Hooks {
	h, err := New(reg, namespace)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *Hooks) CacheHit(key string) {
	h.lookups.WithLabelValues(bookcache.KeyFamily(key), "hit").Inc()
}

func (h *Hooks) CacheMiss(key string) {
	h.lookups.WithLabelValues(bookcache.KeyFamily(key), "miss").Inc()
}

func (h *Hooks) CacheUnavailable(op, key string, _ error) {
	h.unavailable.WithLabelValues(bookcache.KeyFamily(key), op).Inc()
}

func (h *Hooks) EntryDiscarded(key, reason string) {
	h.discarded.WithLabelValues(bookcache.KeyFamily(key), reason).Inc()
}

func (h *Hooks) SetRejected(key string) {
	h.rejected.WithLabelValues(bookcache.KeyFamily(key)).Inc()
}

func (h *Hooks) InvalidateFailed(key string, _ error) {
	h.invalidations.WithLabelValues(bookcache.KeyFamily(key)).Inc()
}
