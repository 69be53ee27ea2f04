package metrics

import coremetrics "github.com/gridwise/microdispatch/core/metrics"

// MultiSink fans solve events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.SolveRecorder
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.SolveRecorder) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolve(ev coremetrics.SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSweep forwards sweep events to sinks that implement SweepRecorder.
func (m *MultiSink) RecordSweep(ev coremetrics.SweepEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SweepRecorder); ok {
			if err := rec.RecordSweep(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
