// Package optimizer builds the hourly dispatch MILP, drives the solver and
// extracts validated dispatch schedules.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridwise/microdispatch/core/metrics"
	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/core/solver"
	"github.com/gridwise/microdispatch/infra/logger"
)

// Engine runs the build-solve-extract pipeline for one horizon. It holds no
// per-run state and is safe for concurrent use; each Optimize call owns its
// own model instance.
type Engine struct {
	solver solver.Solver
	opts   solver.Options
	log    logger.Logger
	sink   metrics.SolveRecorder
}

// New creates an Engine. A nil log disables logging and a nil sink disables
// metrics.
func New(s solver.Solver, opts solver.Options, log logger.Logger, sink metrics.SolveRecorder) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if opts.RelGap <= 0 {
		opts.RelGap = solver.DefaultOptions().RelGap
	}
	return &Engine{solver: s, opts: opts, log: log, sink: sink}
}

// Optimize computes the cost-minimal dispatch for the horizon. It fails fast
// on invalid inputs, surfaces solver-proven infeasibility as an
// InfeasibleModelError, and flags time-limited solutions via
// Result.NotProvenOptimal instead of failing.
func (e *Engine) Optimize(ctx context.Context, in model.HorizonInput, cfg model.AssetConfig) (*model.Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	p, idx := buildProblem(in, cfg)
	e.log.Debugw("model built", map[string]any{
		"run_id":      runID,
		"hours":       in.Hours(),
		"variables":   len(p.Vars),
		"constraints": len(p.Cons),
		"binaries":    p.NumBinaries(),
	})

	start := time.Now()
	sol, err := e.solver.Solve(ctx, p, e.opts)
	if err != nil && sol != nil && sol.Status == solver.StatusError && ctx.Err() == nil {
		// One retry with a relaxed time limit on solver-internal failure.
		// Infeasibility is a modeling condition and is never retried.
		e.log.Warnf("run %s: solver error, retrying with relaxed time limit: %v", runID, err)
		relaxed := e.opts
		relaxed.TimeLimit = 2 * e.opts.TimeLimit
		sol, err = e.solver.Solve(ctx, p, relaxed)
	}
	elapsed := time.Since(start)
	if err != nil {
		e.record(runID, in.Hours(), sol, elapsed, err)
		return nil, fmt.Errorf("run %s: solve: %w", runID, err)
	}

	switch sol.Status {
	case solver.StatusInfeasible:
		hoursList, hint := suspectHours(in, cfg)
		ierr := &InfeasibleModelError{SuspectHours: hoursList, Hint: hint}
		e.record(runID, in.Hours(), sol, elapsed, ierr)
		return nil, ierr
	case solver.StatusUnbounded:
		// All variables are bounded, so this cannot be a property of the
		// inputs; it is a defect in the formulation.
		uerr := &InternalConsistencyError{Hour: -1, Check: "boundedness", Detail: "solver reported an unbounded model"}
		e.record(runID, in.Hours(), sol, elapsed, uerr)
		return nil, uerr
	case solver.StatusOptimal, solver.StatusFeasible:
	default:
		serr := fmt.Errorf("run %s: unexpected solver status %s", runID, sol.Status)
		e.record(runID, in.Hours(), sol, elapsed, serr)
		return nil, serr
	}

	hours, summary, err := extract(in, cfg, idx, sol)
	if err != nil {
		var cerr *InternalConsistencyError
		if errors.As(err, &cerr) {
			e.dumpSolution(runID, p, sol)
		}
		e.record(runID, in.Hours(), sol, elapsed, err)
		return nil, err
	}

	res := &model.Result{
		RunID:            runID,
		Hours:            hours,
		Summary:          summary,
		Objective:        sol.Objective,
		NotProvenOptimal: sol.Status == solver.StatusFeasible,
		Gap:              sol.Gap,
		SolveTime:        elapsed,
	}
	if res.NotProvenOptimal {
		e.log.Warnf("run %s: time limit reached, returning incumbent with gap %.4g", runID, sol.Gap)
	}
	e.record(runID, in.Hours(), sol, elapsed, nil)
	return res, nil
}

func (e *Engine) record(runID string, hours int, sol *solver.Solution, d time.Duration, err error) {
	ev := metrics.SolveEvent{RunID: runID, Hours: hours, Duration: d}
	if sol != nil {
		ev.Status = sol.Status.String()
		ev.Objective = sol.Objective
		ev.Gap = sol.Gap
		ev.Nodes = sol.Nodes
	}
	if err != nil {
		ev.Err = err.Error()
	}
	if rerr := e.sink.RecordSolve(ev); rerr != nil {
		e.log.Warnf("record solve event: %v", rerr)
	}
}

// dumpSolution logs the full variable assignment for diagnosis of consistency
// failures.
func (e *Engine) dumpSolution(runID string, p *solver.Problem, sol *solver.Solution) {
	vars := make(map[string]any, len(p.Vars))
	for i, v := range p.Vars {
		vars[v.Name] = sol.Value(i)
	}
	vars["run_id"] = runID
	e.log.Debugw("inconsistent solution dump", vars)
}
