package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal       prometheus.Counter
	CacheHitsTotal      prometheus.Counter
	RateLimitDropsTotal prometheus.Counter
	FallbackTotal       prometheus.Counter
	TokenRefreshTotal   prometheus.Counter

	ProviderErrors      *prometheus.CounterVec
	ProviderLatency     *prometheus.HistogramVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	Registry            *prometheus.Registry
}

// Create Prometheus collectors and register them
func NewMetrics(p *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodmap_requests_total",
			Help: "Total number of incoming store search requests",
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodmap_cache_hits_total",
			Help: "Number of cache hits for search results",
		}),
		RateLimitDropsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodmap_ratelimit_drops_total",
			Help: "Requests dropped due to rate limiting",
		}),
		FallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodmap_demo_fallback_total",
			Help: "Searches answered with the demo dataset because both providers were empty",
		}),
		TokenRefreshTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodmap_token_refresh_total",
			Help: "Access-token exchanges performed against the 7-ELEVEN API",
		}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_errors_total",
			Help: "Errors returned by each provider",
		}, []string{"provider"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_latency_seconds",
				Help:    "Latency between aggregator and provider",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		Registry: p,
	}

	// Register metrics with Prometheus
	p.MustRegister(
		m.RequestsTotal,
		m.CacheHitsTotal,
		m.RateLimitDropsTotal,
		m.FallbackTotal,
		m.TokenRefreshTotal,
		m.ProviderErrors,
		m.ProviderLatency,
		m.HTTPRequestDuration,
		m.HTTPRequestsTotal,
	)

	return m
}

func (m *Metrics) IncRequests() {
	if m == nil {
		return
	}
	m.RequestsTotal.Inc()
}

func (m *Metrics) IncCacheHits() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) IncRateLimitDrops() {
	if m == nil {
		return
	}
	m.RateLimitDropsTotal.Inc()
}

func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.FallbackTotal.Inc()
}

func (m *Metrics) IncTokenRefresh() {
	if m == nil {
		return
	}
	m.TokenRefreshTotal.Inc()
}

func (m *Metrics) ObserveProviderLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.ProviderLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) IncProviderFailure(provider string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(provider).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
