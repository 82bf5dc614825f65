package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine metrics
	metricComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicaldemand",
			Name:      "computations_total",
			Help:      "Demand model computations by outcome (ok, error, cached)",
		},
		[]string{"outcome"},
	)

	metricComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clinicaldemand",
			Name:      "compute_duration_seconds",
			Help:      "Time spent in a single uncached demand model computation",
			Buckets:   prometheus.ExponentialBuckets(0.000005, 4, 8),
		},
	)

	metricFinalRecommendation = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clinicaldemand",
			Name:      "last_final_recommendation",
			Help:      "Final staffing recommendation of the most recent computation",
		},
	)

	// Input boundary metrics
	metricRejectedInputs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicaldemand",
			Name:      "rejected_inputs_total",
			Help:      "Inputs rejected before reaching the engine, by reason (parse, validation)",
		},
		[]string{"reason"},
	)

	// HTTP metrics
	metricRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicaldemand",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	metricRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clinicaldemand",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Outcome labels for ObserveComputation
const (
	OutcomeOK     = "ok"
	OutcomeError  = "error"
	OutcomeCached = "cached"
)

// ObserveComputation records one engine call. Duration is ignored for cached results.
func ObserveComputation(outcome string, duration time.Duration, finalRecommendation int64) {
	metricComputations.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		metricComputeDuration.Observe(duration.Seconds())
	}
	if outcome != OutcomeError {
		metricFinalRecommendation.Set(float64(finalRecommendation))
	}
}

// ObserveRejectedInput records an input stopped at the parse or validation boundary
func ObserveRejectedInput(reason string) {
	metricRejectedInputs.WithLabelValues(reason).Inc()
}

// ObserveRequest records one HTTP request
func ObserveRequest(route, code string, duration time.Duration) {
	metricRequests.WithLabelValues(route, code).Inc()
	metricRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
