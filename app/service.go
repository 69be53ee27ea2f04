// Package app wires the configuration, input adapter, solver and metrics sinks
// into the commands exposed by the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gridwise/microdispatch/config"
	coremetrics "github.com/gridwise/microdispatch/core/metrics"
	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/core/optimizer"
	"github.com/gridwise/microdispatch/core/sweep"
	"github.com/gridwise/microdispatch/infra/logger"
	"github.com/gridwise/microdispatch/infra/metrics"
	milp "github.com/gridwise/microdispatch/infra/solver"
	"github.com/gridwise/microdispatch/infra/timeseries"
	"github.com/gridwise/microdispatch/pkg/export"
)

// Service orchestrates one optimization or sweep run from configuration.
type Service struct {
	cfg    *config.Config
	log    logger.Logger
	engine *optimizer.Engine
	sink   coremetrics.SolveRecorder
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sink, err := metrics.FromConfig(cfg.Metrics, logg)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	engine := optimizer.New(milp.New(logger.New("solver")), cfg.Solver.Options(), logger.New("engine"), sink)
	return &Service{cfg: cfg, log: logg, engine: engine, sink: sink}, nil
}

// Start launches background infrastructure, currently the Prometheus endpoint
// when enabled. It returns immediately.
func (s *Service) Start(ctx context.Context) {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Optimize runs a single horizon and writes the result to the configured
// output.
func (s *Service) Optimize(ctx context.Context) (*model.Result, error) {
	in, err := timeseries.LoadCSV(s.cfg.Input.SeriesPath)
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", s.cfg.Input.SeriesPath, err)
	}
	s.log.Infof("optimizing %d hours from %s", in.Hours(), s.cfg.Input.SeriesPath)

	res, err := s.engine.Optimize(ctx, in, s.cfg.Assets.ToModel())
	if err != nil {
		return nil, err
	}
	if err := s.write(func(w io.Writer) error {
		if s.cfg.Output.Format == "csv" {
			return export.WriteCSV(w, res)
		}
		return export.WriteJSON(w, res)
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Sweep runs the configured sizing grid and writes the ranked outcomes to the
// configured output.
func (s *Service) Sweep(ctx context.Context) ([]sweep.Outcome, error) {
	if len(s.cfg.Sweep.Candidates) == 0 {
		return nil, fmt.Errorf("sweep: no candidates configured")
	}
	in, err := timeseries.LoadCSV(s.cfg.Input.SeriesPath)
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", s.cfg.Input.SeriesPath, err)
	}

	sweepSink, _ := s.sink.(coremetrics.SweepRecorder)
	runner := sweep.NewRunner(s.engine, s.cfg.Sweep.MaxConcurrentSolves, logger.New("sweep"), sweepSink)
	defer runner.Close()

	s.log.Infof("sweeping %d candidates, %d concurrent solves",
		len(s.cfg.Sweep.Candidates), s.cfg.Sweep.MaxConcurrentSolves)
	outcomes := runner.Run(ctx, in, s.cfg.Assets.ToModel(), s.cfg.Sweep.Candidates)

	if err := s.write(func(w io.Writer) error {
		if s.cfg.Output.Format == "csv" {
			return export.WriteSweepCSV(w, outcomes)
		}
		return export.WriteSweepJSON(w, outcomes)
	}); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Close releases sink resources.
func (s *Service) Close() {
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
}

func (s *Service) write(fn func(io.Writer) error) error {
	if s.cfg.Output.Path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(s.cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", s.cfg.Output.Path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("write output %s: %w", s.cfg.Output.Path, err)
	}
	s.log.Infof("result written to %s", s.cfg.Output.Path)
	return nil
}
