package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector on top of Prometheus primitives.
type PrometheusCollector struct {
	dispatchTotal   *prometheus.CounterVec
	dispatchLatency prometheus.Histogram
	runDuration     prometheus.Histogram
	runBatchSize    prometheus.Histogram
	stagingPending  prometheus.Gauge
	stagingVerified prometheus.Gauge
	committedTotal  prometheus.Counter
}

// NewPrometheusCollector creates the pipeline collectors and registers them
// with the provided registerer.
func NewPrometheusCollector(namespace string, reg prometheus.Registerer) *PrometheusCollector {
	pc := &PrometheusCollector{
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_outcomes_total",
				Help:      "Total dispatched scoring calls by terminal status",
			},
			[]string{"status"},
		),
		dispatchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_latency_seconds",
				Help:      "Per-item scoring call latency",
				Buckets:   prometheus.DefBuckets,
			},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "End-to-end simulation run duration",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		runBatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_batch_size",
				Help:      "Batch size of simulation runs",
				Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000},
			},
		),
		stagingPending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "staging_pending",
				Help:      "Transactions awaiting verification",
			},
		),
		stagingVerified: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "staging_verified",
				Help:      "Verified transactions awaiting commit",
			},
		),
		committedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "committed_records_total",
				Help:      "Verified records confirmed stored by the persistence service",
			},
		),
	}

	reg.MustRegister(
		pc.dispatchTotal,
		pc.dispatchLatency,
		pc.runDuration,
		pc.runBatchSize,
		pc.stagingPending,
		pc.stagingVerified,
		pc.committedTotal,
	)
	return pc
}

func (pc *PrometheusCollector) ObserveDispatch(status string, latency time.Duration) {
	pc.dispatchTotal.WithLabelValues(status).Inc()
	pc.dispatchLatency.Observe(latency.Seconds())
}

func (pc *PrometheusCollector) ObserveRun(batchSize int, duration time.Duration) {
	pc.runBatchSize.Observe(float64(batchSize))
	pc.runDuration.Observe(duration.Seconds())
}

func (pc *PrometheusCollector) SetStagingCounts(pending, verified int) {
	pc.stagingPending.Set(float64(pending))
	pc.stagingVerified.Set(float64(verified))
}

func (pc *PrometheusCollector) AddCommitted(count int) {
	pc.committedTotal.Add(float64(count))
}
