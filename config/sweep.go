package config

import (
	"fmt"

	"github.com/gridwise/microdispatch/core/sweep"
)

// SweepConfig describes the sizing grid for the sweep command.
type SweepConfig struct {
	// MaxConcurrentSolves bounds how many candidates are optimized at once.
	MaxConcurrentSolves int               `json:"max_concurrent_solves"`
	Candidates          []sweep.Candidate `json:"candidates"`
}

// SetDefaults applies fallback values for optional fields.
func (c *SweepConfig) SetDefaults() {
	if c.MaxConcurrentSolves <= 0 {
		c.MaxConcurrentSolves = 4
	}
}

// Validate checks the candidate grid.
func (c SweepConfig) Validate() error {
	for i, cand := range c.Candidates {
		if cand.BatteryCapacityKWh < 0 {
			return fmt.Errorf("sweep.candidates[%d]: battery_capacity_kwh must be >= 0", i)
		}
		if cand.DieselCapacityKW < 0 {
			return fmt.Errorf("sweep.candidates[%d]: diesel_capacity_kw must be >= 0", i)
		}
		if cand.SolarScale < 0 {
			return fmt.Errorf("sweep.candidates[%d]: solar_scale must be >= 0", i)
		}
	}
	return nil
}
