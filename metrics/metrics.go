package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsync_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})
	HTTPDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "civicsync_http_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"method", "route"})
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsync_report_submissions_total",
		Help: "Report submissions by outcome (created, duplicate, invalid, out_of_region, error)",
	}, []string{"outcome"})
	StatusUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsync_status_updates_total",
		Help: "Status update requests by requester role and whether the status changed hands",
	}, []string{"role", "applied"})
	FallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsync_enrichment_fallbacks_total",
		Help: "Submissions that used a fallback value because a collaborator failed or returned nothing",
	}, []string{"collaborator"})
	ExternalDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "civicsync_external_call_duration_ms",
		Help:    "Geocoder and classifier call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"collaborator", "outcome"})
	GeocodeCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsync_geocode_cache_total",
		Help: "Geocode cache lookups by result (hit, miss, error)",
	}, []string{"result"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "civicsync_rate_limited_total",
		Help: "Report submissions rejected by the per-user daily limit",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPDurationMs)
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(StatusUpdatesTotal)
	prometheus.MustRegister(FallbacksTotal)
	prometheus.MustRegister(ExternalDurationMs)
	prometheus.MustRegister(GeocodeCacheTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// Handler exposes the registered metrics for Prometheus scraping.
func Handler() http.Handler { return promhttp.Handler() }
