// Package metrics provides the centralized Prometheus metrics registry for
// the prediction service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchcast",
		Name:      "predictions_total",
		Help:      "Total number of predictions returned, by producing engine",
	}, []string{"engine"})
	TierFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchcast",
		Name:      "tier_failures_total",
		Help:      "Total number of generation tier failures, by tier and reason",
	}, []string{"tier", "reason"})
	NormalizerRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchcast",
		Name:      "normalizer_rejections_total",
		Help:      "Total number of generator payloads rejected by the normalizer",
	}, []string{"reason"})
	BackfillCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchcast",
		Name:      "backfill_calls_total",
		Help:      "Total number of provider backfill calls, by kind",
	}, []string{"kind"})
	BackfillErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchcast",
		Name:      "backfill_errors_total",
		Help:      "Total number of failed provider backfill calls, by kind",
	}, []string{"kind"})
	FeatureComputationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "matchcast",
		Name:      "feature_computations_total",
		Help:      "Total number of feature recomputations",
	})
)

// Gauge metrics
var (
	FeatureCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "matchcast",
		Name:      "feature_cache_hit_ratio",
		Help:      "Hit ratio of the in-memory feature cache",
	})
)

// Histogram metrics
var (
	GenerationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "matchcast",
		Name:      "generation_latency_seconds",
		Help:      "Latency of generator calls in seconds, by tier",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"tier"})
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matchcast",
		Name:      "prediction_duration_seconds",
		Help:      "End-to-end duration of prediction requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(TierFailuresTotal)
		registry.MustRegister(NormalizerRejectionsTotal)
		registry.MustRegister(BackfillCallsTotal)
		registry.MustRegister(BackfillErrorsTotal)
		registry.MustRegister(FeatureComputationsTotal)

		registry.MustRegister(FeatureCacheHitRatio)

		registry.MustRegister(GenerationLatency)
		registry.MustRegister(PredictionDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
