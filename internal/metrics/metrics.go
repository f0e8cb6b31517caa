// Package metrics holds the Prometheus collectors for planning and execution.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "factorgrid"

// Metrics records plan builds and stage executions.
type Metrics struct {
	plansTotal     *prometheus.CounterVec
	planDuration   prometheus.Histogram
	stagesPlanned  *prometheus.CounterVec
	stagesExecuted *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
}

// New registers the collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Labels: result (ok, error)
		plansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "plans_total",
			Help:      "Total planning runs by result",
		}, []string{"result"}),

		planDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "duration_seconds",
			Help:      "Time spent building a plan",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		// Labels: kind (Read, Join, ClassPrep, IntermediateFunc, Compute, Persist)
		stagesPlanned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "stages_total",
			Help:      "Total stages emitted by kind",
		}, []string{"kind"}),

		// Labels: kind, status (completed, failed, skipped)
		stagesExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "stages_total",
			Help:      "Total stages executed by kind and final status",
		}, []string{"kind", "status"}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution time by kind",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// ObservePlan records one planning run.
func (m *Metrics) ObservePlan(duration time.Duration, stagesByKind map[string]int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.plansTotal.WithLabelValues(result).Inc()
	m.planDuration.Observe(duration.Seconds())
	for kind, n := range stagesByKind {
		m.stagesPlanned.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveStage records the outcome of one executed stage. Skipped stages
// never ran and have no duration.
func (m *Metrics) ObserveStage(kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stagesExecuted.WithLabelValues(kind, status).Inc()
	if status != "skipped" {
		m.stageDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}
}
