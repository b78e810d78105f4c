package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	evaluationOutcomes  *prometheus.CounterVec
	evaluationRejection *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "profileiq",
			Name:      "api_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "profileiq",
			Name:      "api_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0, 60.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "profileiq",
			Name:      "api_errors_total",
			Help:      "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		evaluationOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "profileiq",
			Subsystem: "evaluation",
			Name:      "outcomes_total",
			Help:      "Terminal outcomes of evaluation triggers by stage.",
		}, []string{"stage"})

		evaluationRejection = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "profileiq",
			Subsystem: "evaluation",
			Name:      "rate_limited_total",
			Help:      "Evaluation triggers rejected by the rate limiter.",
		}, []string{"route"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, evaluationOutcomes, evaluationRejection)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// EvaluationOutcomes counts terminal evaluation stages.
func EvaluationOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationOutcomes
}

// EvaluationRateLimited counts limiter rejections.
func EvaluationRateLimited() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationRejection
}
