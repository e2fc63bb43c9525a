// Package prom exports cache diagnostics as prometheus counters.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/aimcache"
)

// Hooks counts events by operation. Keys are never used as labels.
type Hooks struct {
	reads          *prometheus.CounterVec
	invalidKeys    *prometheus.CounterVec
	backendErrors  *prometheus.CounterVec
	codecErrors    *prometheus.CounterVec
	fallbackErrors prometheus.Counter
	expireErrors   prometheus.Counter
	connEvents     *prometheus.CounterVec
}

var _ aimcache.Hooks = (*Hooks)(nil)

// New registers the counters on reg (prometheus.DefaultRegisterer when nil).
// namespace prefixes every metric name, e.g. "partner_api".
func New(reg prometheus.Registerer, namespace string) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		reads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aimcache_reads_total",
			Help:      "Number of cache reads by operation and result (hit or miss)",
		}, []string{"op", "result"}),
		invalidKeys: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aimcache_invalid_keys_total",
			Help:      "Number of operations rejected for an invalid key",
		}, []string{"op"}),
		backendErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aimcache_backend_errors_total",
			Help:      "Number of failed backend calls",
		}, []string{"op"}),
		codecErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aimcache_codec_errors_total",
			Help:      "Number of payloads that failed to encode or decode",
		}, []string{"op"}),
		fallbackErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aimcache_fallback_errors_total",
			Help:      "Number of remember fallbacks that failed or panicked",
		}),
		expireErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aimcache_expire_errors_total",
			Help:      "Number of multiput TTLs that could not be applied",
		}),
		connEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aimcache_connection_events_total",
			Help:      "Number of backend connection lifecycle events",
		}, []string{"event"}),
	}
}

func (h *Hooks) InvalidKey(op string)                { h.invalidKeys.WithLabelValues(op).Inc() }
func (h *Hooks) BackendError(op, _ string, _ error)  { h.backendErrors.WithLabelValues(op).Inc() }
func (h *Hooks) CodecError(op, _ string, _ error)    { h.codecErrors.WithLabelValues(op).Inc() }
func (h *Hooks) FallbackFailed(string, error)        { h.fallbackErrors.Inc() }
func (h *Hooks) ExpireFailed(string, error)          { h.expireErrors.Inc() }
func (h *Hooks) Hit(op, _ string)                    { h.reads.WithLabelValues(op, "hit").Inc() }
func (h *Hooks) Miss(op, _ string)                   { h.reads.WithLabelValues(op, "miss").Inc() }
func (h *Hooks) Connection(event, _ string, _ error) { h.connEvents.WithLabelValues(event).Inc() }
