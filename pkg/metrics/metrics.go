package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records API call outcomes and products-cache effectiveness.
type ClientMetrics struct {
	duration  *prometheus.HistogramVec
	failure   *prometheus.CounterVec
	cacheHit  *prometheus.CounterVec
	cacheMiss *prometheus.CounterVec
}

// NewClientMetrics registers the client metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_api_request_duration_seconds",
		Help:    "Duration of storefront API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_request_failures",
		Help: "Failed storefront API requests.",
	}, []string{"resource"})
	cacheHit := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cache_hits",
		Help: "Keyed product-cache hits.",
	}, []string{"cache"})
	cacheMiss := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cache_misses",
		Help: "Keyed product-cache misses.",
	}, []string{"cache"})
	reg.MustRegister(duration, failure, cacheHit, cacheMiss)
	return &ClientMetrics{
		duration:  duration,
		failure:   failure,
		cacheHit:  cacheHit,
		cacheMiss: cacheMiss,
	}
}

// ObserveRequest records the duration for the named resource.
func (c *ClientMetrics) ObserveRequest(resource string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(resource)).Observe(duration.Seconds())
}

// IncFailure increments the failure counter for the named resource.
func (c *ClientMetrics) IncFailure(resource string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(resource)).Inc()
}

// IncCacheHit increments the hit counter for the named cache.
func (c *ClientMetrics) IncCacheHit(cache string) {
	if c == nil || c.cacheHit == nil {
		return
	}
	c.cacheHit.WithLabelValues(normalizeLabel(cache)).Inc()
}

// IncCacheMiss increments the miss counter for the named cache.
func (c *ClientMetrics) IncCacheMiss(cache string) {
	if c == nil || c.cacheMiss == nil {
		return
	}
	c.cacheMiss.WithLabelValues(normalizeLabel(cache)).Inc()
}

func normalizeLabel(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
