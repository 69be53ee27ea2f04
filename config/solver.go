package config

import (
	"fmt"
	"time"

	"github.com/gridwise/microdispatch/core/solver"
)

// SolverConfig bounds the branch-and-bound search.
type SolverConfig struct {
	// RelGap stops the search once the incumbent is within this relative
	// distance of the best bound.
	RelGap float64 `json:"rel_gap"`
	// TimeLimitSeconds caps the wall-clock time of one solve.
	TimeLimitSeconds int `json:"time_limit_seconds"`
	// MaxNodes caps the number of explored nodes; 0 means unlimited.
	MaxNodes int `json:"max_nodes"`
}

// SetDefaults applies fallback values for optional fields.
func (c *SolverConfig) SetDefaults() {
	def := solver.DefaultOptions()
	if c.RelGap == 0 {
		c.RelGap = def.RelGap
	}
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = int(def.TimeLimit / time.Second)
	}
}

// Validate checks the configuration ranges.
func (c SolverConfig) Validate() error {
	if c.RelGap < 0 || c.RelGap >= 1 {
		return fmt.Errorf("solver.rel_gap must be in [0,1)")
	}
	if c.TimeLimitSeconds <= 0 {
		return fmt.Errorf("solver.time_limit_seconds must be positive")
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("solver.max_nodes must be >= 0")
	}
	return nil
}

// Options converts the section into solver options.
func (c SolverConfig) Options() solver.Options {
	return solver.Options{
		RelGap:    c.RelGap,
		TimeLimit: time.Duration(c.TimeLimitSeconds) * time.Second,
		MaxNodes:  c.MaxNodes,
	}
}
