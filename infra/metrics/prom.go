package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/gridwise/microdispatch/core/metrics"
)

// PromSink records solve outcomes in Prometheus metrics.
type PromSink struct {
	solves    *prometheus.CounterVec
	duration  prometheus.Histogram
	objective prometheus.Gauge
	gap       prometheus.Gauge
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_solves_total",
		Help: "Total number of dispatch optimization runs by solver status",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_solve_duration_seconds",
		Help:    "Wall-clock time of optimization solves",
		Buckets: prometheus.DefBuckets,
	})
	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_last_objective",
		Help: "Objective value of the most recent successful solve",
	})
	gap := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_last_gap",
		Help: "Relative MIP gap of the most recent solve",
	})

	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(objective); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			objective = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(gap); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			gap = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{solves: solves, duration: duration, objective: objective, gap: gap}, nil
}

// RecordSolve updates the counters and gauges for one solve.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solves.WithLabelValues(ev.Status).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	if ev.Err == "" {
		s.objective.Set(ev.Objective)
		s.gap.Set(ev.Gap)
	}
	return nil
}
