package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
)

const namespace = "docintel"

var (
	jobDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}
	queueLagBuckets    = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600}
)

// WorkerMetrics owns the process registry. Pipeline metrics register on it
// so the worker exposes a single /metrics endpoint.
type WorkerMetrics struct {
	registry *prometheus.Registry

	jobTotal    *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobInFlight prometheus.Gauge
	queueLag    *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	m := &WorkerMetrics{
		registry: prometheus.NewRegistry(),
		jobTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "job_total",
			Help:      "Analysis jobs by status and failure kind.",
		}, []string{"service", "status", "kind"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Analysis job duration in seconds by status.",
			Buckets:   jobDurationBuckets,
		}, []string{"service", "status"}),
		jobInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "job_in_flight",
			Help:        "Analysis jobs currently running.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		queueLag: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Time between document submission and the start of analysis.",
			Buckets:   queueLagBuckets,
		}, []string{"service"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.jobTotal, m.jobDuration, m.jobInFlight, m.queueLag,
	)
	return m
}

func (m *WorkerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartJob() {
	m.jobInFlight.Inc()
}

// FinishJob records a finished job. Failures are labelled with their domain
// error kind so timeouts and bad uploads can be told apart.
func (m *WorkerMetrics) FinishJob(service string, duration time.Duration, err error) {
	m.jobInFlight.Dec()

	status, kind := "success", ""
	if err != nil {
		status, kind = "error", domain.KindName(err)
	}
	m.jobTotal.WithLabelValues(service, status, kind).Inc()
	m.jobDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// ObserveQueueLag ignores negative lag caused by clock skew between submitter and worker.
func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag >= 0 {
		m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
	}
}
