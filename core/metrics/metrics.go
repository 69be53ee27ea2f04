// Package metrics defines observability events emitted by the optimization
// engine and the sink interfaces implemented under infra/metrics.
package metrics

import "time"

// SolveEvent captures the outcome of one optimization run.
type SolveEvent struct {
	RunID     string
	Status    string
	Hours     int
	Objective float64
	Gap       float64
	Nodes     int
	Duration  time.Duration
	Err       string
}

// SolveRecorder records solve outcomes for observability purposes.
type SolveRecorder interface {
	RecordSolve(ev SolveEvent) error
}

// SweepEvent captures the outcome of one sizing-sweep candidate.
type SweepEvent struct {
	RunID      string
	BatteryKWh float64
	DieselKW   float64
	SolarScale float64
	TotalCost  float64
	Savings    float64
	Failed     bool
	Duration   time.Duration
}

// SweepRecorder records sweep candidate outcomes.
type SweepRecorder interface {
	RecordSweep(ev SweepEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }
func (NopSink) RecordSweep(SweepEvent) error { return nil }
