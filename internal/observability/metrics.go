package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_provider_requests_total",
			Help: "Outbound weather provider requests by provider, endpoint, and outcome.",
		},
		[]string{"provider", "endpoint", "outcome"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_fetch_duration_seconds",
			Help:    "Duration of complete weather fetches (current conditions plus forecast).",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "outcome"},
	)

	StaleResults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_fetch_stale_total",
			Help: "Fetch completions discarded because a newer selection was issued.",
		},
	)

	GeocoderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocoder_requests_total",
			Help: "Place search requests by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(ProviderRequests, FetchDuration, StaleResults, GeocoderRequests)
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Outcome maps an error to the outcome label used by the counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
