package metrics

import (
	coremetrics "github.com/gridwise/microdispatch/core/metrics"
	"github.com/gridwise/microdispatch/infra/logger"
)

// FromConfig composes the enabled sinks into a single recorder. With no sink
// enabled a NopSink is returned.
func FromConfig(cfg coremetrics.Config, log logger.Logger) (coremetrics.SolveRecorder, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	var sinks []coremetrics.SolveRecorder
	if cfg.PrometheusEnabled {
		sink, err := NewPromSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
