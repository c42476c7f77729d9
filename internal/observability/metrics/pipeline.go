package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// PipelineMetrics implements the analysis observer port.
type PipelineMetrics struct {
	service string

	pageRoutes     *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	entityOutcomes *prometheus.CounterVec
	keywords       prometheus.Histogram
	breakerState   *prometheus.GaugeVec
}

func NewPipelineMetrics(reg prometheus.Registerer, service string) *PipelineMetrics {
	pageRoutes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "pages_total",
			Help:      "Pages processed by acquisition route.",
		},
		[]string{"service", "route"},
	)
	fallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "capability_fallback_total",
			Help:      "Times an optional capability was unavailable and a fallback was used.",
		},
		[]string{"service", "capability"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"service", "stage"},
	)
	entityOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "entities_total",
			Help:      "Scored entities by outcome.",
		},
		[]string{"service", "outcome"},
	)
	keywords := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "keywords",
			Name:        "per_document",
			Help:        "Keywords returned per document.",
			Buckets:     []float64{0, 1, 5, 10, 20, 30, 50, 100},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)

	reg.MustRegister(pageRoutes, fallbacks, stageDuration, entityOutcomes, keywords, breakerState)

	return &PipelineMetrics{
		service:        service,
		pageRoutes:     pageRoutes,
		fallbacks:      fallbacks,
		stageDuration:  stageDuration,
		entityOutcomes: entityOutcomes,
		keywords:       keywords,
		breakerState:   breakerState,
	}
}

func (m *PipelineMetrics) ObservePage(route string) {
	m.pageRoutes.WithLabelValues(m.service, route).Inc()
}

func (m *PipelineMetrics) ObserveFallback(capability string) {
	m.fallbacks.WithLabelValues(m.service, capability).Inc()
}

func (m *PipelineMetrics) ObserveStage(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(m.service, stage).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveEntities(accepted, converted, dropped int) {
	m.entityOutcomes.WithLabelValues(m.service, "accepted").Add(float64(accepted))
	m.entityOutcomes.WithLabelValues(m.service, "converted").Add(float64(converted))
	m.entityOutcomes.WithLabelValues(m.service, "dropped").Add(float64(dropped))
}

func (m *PipelineMetrics) ObserveKeywords(count int) {
	m.keywords.Observe(float64(count))
}

// ObserveBreakerState matches resilience.StateListener.
func (m *PipelineMetrics) ObserveBreakerState(operation string, _, to gobreaker.State) {
	var v float64
	switch to {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(v)
}
