// Package sweep runs the dispatch optimizer over a grid of candidate asset
// sizes. Runs are independent and executed concurrently with a bounded worker
// pool; each run owns its own copy of the asset configuration.
package sweep

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gridwise/microdispatch/core/metrics"
	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/infra/logger"
	"github.com/gridwise/microdispatch/internal/eventbus"
)

// Optimizer is the subset of the engine the sweep depends on.
type Optimizer interface {
	Optimize(ctx context.Context, in model.HorizonInput, cfg model.AssetConfig) (*model.Result, error)
}

// Candidate is one point of the sizing grid.
type Candidate struct {
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`
	DieselCapacityKW   float64 `json:"diesel_capacity_kw"`
	// SolarScale multiplies the available solar series; 1 keeps it as-is.
	SolarScale float64 `json:"solar_scale"`
}

// Outcome pairs a candidate with its optimization result or failure.
type Outcome struct {
	Candidate Candidate     `json:"candidate"`
	Result    *model.Result `json:"result,omitempty"`
	Err       error         `json:"-"`
	ErrText   string        `json:"error,omitempty"`
}

// EventKind classifies run lifecycle events published on the bus.
type EventKind int

const (
	RunStarted EventKind = iota
	RunFinished
	RunFailed
)

// Event is a run lifecycle notification.
type Event struct {
	Kind      EventKind
	Candidate Candidate
	Outcome   *Outcome
}

// Runner executes a sizing sweep.
type Runner struct {
	opt     Optimizer
	log     logger.Logger
	sink    metrics.SweepRecorder
	bus     *eventbus.Bus[Event]
	maxRuns int
}

// NewRunner creates a Runner. maxConcurrent bounds the number of simultaneous
// solves; values below one default to one. A nil sink disables metrics.
func NewRunner(opt Optimizer, maxConcurrent int, log logger.Logger, sink metrics.SweepRecorder) *Runner {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Runner{
		opt:     opt,
		log:     log,
		sink:    sink,
		bus:     eventbus.New[Event](),
		maxRuns: maxConcurrent,
	}
}

// Events returns a channel of run lifecycle events. Subscribers must be
// registered before Run is called.
func (r *Runner) Events() <-chan Event { return r.bus.Subscribe() }

// Close releases the event bus.
func (r *Runner) Close() { r.bus.Close() }

// Run optimizes every candidate against the shared horizon input and base
// configuration, and returns the outcomes sorted by total cost ascending with
// failures last. The context cancels outstanding runs.
func (r *Runner) Run(ctx context.Context, in model.HorizonInput, base model.AssetConfig, cands []Candidate) []Outcome {
	outcomes := make([]Outcome, len(cands))
	sem := make(chan struct{}, r.maxRuns)
	var wg sync.WaitGroup

	for i, cand := range cands {
		wg.Add(1)
		go func(i int, cand Candidate) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[i] = Outcome{Candidate: cand, Err: ctx.Err(), ErrText: ctx.Err().Error()}
				return
			}
			outcomes[i] = r.runOne(ctx, in, base, cand)
		}(i, cand)
	}
	wg.Wait()

	sort.SliceStable(outcomes, func(a, b int) bool {
		oa, ob := outcomes[a], outcomes[b]
		if (oa.Err == nil) != (ob.Err == nil) {
			return oa.Err == nil
		}
		if oa.Err != nil {
			return false
		}
		return oa.Result.Summary.TotalCost < ob.Result.Summary.TotalCost
	})
	return outcomes
}

func (r *Runner) runOne(ctx context.Context, in model.HorizonInput, base model.AssetConfig, cand Candidate) Outcome {
	r.bus.Publish(Event{Kind: RunStarted, Candidate: cand})
	start := time.Now()

	cfg := applyCandidate(base, cand)
	input := scaleSolar(in, cand.SolarScale)

	res, err := r.opt.Optimize(ctx, input, cfg)
	out := Outcome{Candidate: cand, Result: res, Err: err}
	ev := metrics.SweepEvent{
		BatteryKWh: cfg.BatteryCapacityKWh,
		DieselKW:   cfg.DieselCapacityKW,
		SolarScale: cand.SolarScale,
		Duration:   time.Since(start),
	}
	if err != nil {
		out.ErrText = err.Error()
		ev.Failed = true
		r.log.Warnf("sweep candidate battery=%.0f diesel=%.0f failed: %v",
			cfg.BatteryCapacityKWh, cfg.DieselCapacityKW, err)
		r.bus.Publish(Event{Kind: RunFailed, Candidate: cand, Outcome: &out})
	} else {
		ev.RunID = res.RunID
		ev.TotalCost = res.Summary.TotalCost
		ev.Savings = res.Summary.Savings
		r.bus.Publish(Event{Kind: RunFinished, Candidate: cand, Outcome: &out})
	}
	if rerr := r.sink.RecordSweep(ev); rerr != nil {
		r.log.Warnf("record sweep event: %v", rerr)
	}
	return out
}

// applyCandidate overlays the candidate sizes on a copy of the base config.
// Zero-valued candidate fields keep the base value.
func applyCandidate(base model.AssetConfig, cand Candidate) model.AssetConfig {
	cfg := base
	if cand.BatteryCapacityKWh > 0 {
		cfg.BatteryCapacityKWh = cand.BatteryCapacityKWh
		if cfg.BatteryInitialSoCKWh > cfg.BatteryCapacityKWh {
			cfg.BatteryInitialSoCKWh = cfg.BatteryCapacityKWh
		}
	}
	if cand.DieselCapacityKW > 0 {
		cfg.DieselCapacityKW = cand.DieselCapacityKW
	}
	return cfg
}

func scaleSolar(in model.HorizonInput, scale float64) model.HorizonInput {
	if scale <= 0 || scale == 1 {
		return in
	}
	scaled := model.HorizonInput{
		LoadKW:  in.LoadKW,
		SolarKW: make([]float64, len(in.SolarKW)),
	}
	for i, v := range in.SolarKW {
		scaled.SolarKW[i] = v * scale
	}
	return scaled
}
