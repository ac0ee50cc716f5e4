package engine

import (
	"fmt"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	analyses       *prometheus.CounterVec
	moduleFailures *prometheus.CounterVec
	duration       prometheus.Histogram
	moduleScore    *prometheus.HistogramVec
}

// NewMetrics creates the engine collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festguard_analyses_total",
			Help: "Completed analyses by risk category.",
		}, []string{"category"}),
		moduleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festguard_module_failures_total",
			Help: "Module results that carried a failure kind.",
		}, []string{"module", "kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "festguard_analysis_duration_seconds",
			Help:    "Wall-clock time of a full analysis.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		moduleScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "festguard_module_score",
			Help:    "Distribution of module scores.",
			Buckets: prometheus.LinearBuckets(0, 5, 7),
		}, []string{"module"}),
	}

	for _, c := range []prometheus.Collector{m.analyses, m.moduleFailures, m.duration, m.moduleScore} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register engine metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observe(result *analysis.Result) {
	if m == nil || result == nil {
		return
	}
	m.analyses.WithLabelValues(string(result.Category())).Inc()
	m.duration.Observe(result.Duration().Seconds())
	for _, mod := range result.Modules() {
		m.moduleScore.WithLabelValues(string(mod.Module)).Observe(float64(mod.Score))
		if kind, ok := mod.FailureKind(); ok {
			m.moduleFailures.WithLabelValues(string(mod.Module), kind).Inc()
		}
	}
}
