package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/relayops/modbalance/core/metrics"
)

// PromSink records optimization runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	moved    prometheus.Gauge
	slack    *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The metrics HTTP server is started separately.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "balance_runs_total",
		Help: "Total number of optimization runs by final status",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "balance_solve_seconds",
		Help:    "Wall-clock time spent in the solver",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	moved := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "balance_moved_instances",
		Help: "Instances moved by the latest run",
	})
	slack := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "balance_slack_hours",
		Help: "Threshold overage of the latest run in hours",
	}, []string{"kind"})

	collectors := []prometheus.Collector{runs, duration, moved, slack}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				runs = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				duration = are.ExistingCollector.(prometheus.Histogram)
			case 2:
				moved = are.ExistingCollector.(prometheus.Gauge)
			case 3:
				slack = are.ExistingCollector.(*prometheus.GaugeVec)
			}
		}
	}

	return &PromSink{runs: runs, duration: duration, moved: moved, slack: slack}, nil
}

// RecordRun updates the run counters and gauges.
func (s *PromSink) RecordRun(r coremetrics.RunRecord) error {
	s.runs.WithLabelValues(r.Status).Inc()
	s.duration.Observe(r.SolveDuration.Seconds())
	s.moved.Set(float64(r.Moved))
	s.slack.WithLabelValues("total").Set(r.TotalSlack)
	s.slack.WithLabelValues("type").Set(r.TypeSlack)
	return nil
}

// RecordWeekLoads is a no-op for Prometheus; per-week series belong to the
// time-series sink.
func (s *PromSink) RecordWeekLoads([]coremetrics.WeekLoadRecord) error { return nil }
