package optimizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/core/solver"
)

// solutionFor builds a Solution whose values are filled by fn, keyed on the
// variable name the builder assigned.
func solutionFor(p *solver.Problem, fn func(name string) float64) *solver.Solution {
	vals := make([]float64, len(p.Vars))
	for i, v := range p.Vars {
		vals[i] = fn(v.Name)
	}
	return &solver.Solution{Status: solver.StatusOptimal, Values: vals}
}

func TestExtractValidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.BatteryRoundTripEfficiency = 1
	cfg.DieselNoLoadCostPerHour = 2
	in := model.HorizonInput{LoadKW: []float64{300, 100}, SolarKW: []float64{0, 40}}
	p, idx := buildProblem(in, cfg)

	sol := solutionFor(p, func(name string) float64 {
		switch name {
		case "diesel[0]":
			return 300
		case "on[0]":
			return 1
		case "diesel[1]":
			return 160
		case "on[1]":
			return 1
		case "charge[1]":
			return 100
		case "soc[0]":
			return 500
		case "soc[1]":
			return 600
		case "solar[1]":
			return 40
		default:
			return 0
		}
	})

	hours, sum, err := extract(in, cfg, idx, sol)
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.True(t, hours[0].DieselOn)
	assert.Equal(t, 300.0, hours[0].DieselKW)
	assert.Equal(t, 100.0, hours[1].ChargeKW)

	assert.InDelta(t, 460, sum.DieselEnergyKWh, 1e-9)
	assert.Equal(t, 2, sum.DieselRuntimeHrs)
	// 460 kWh at 0.5 plus 2h of no-load at 2.
	assert.InDelta(t, 234, sum.FuelCost, 1e-9)
	assert.InDelta(t, 46, sum.CarbonCost, 1e-9)
	assert.InDelta(t, 0, sum.CurtailedKWh, 1e-9)
	assert.InDelta(t, 600, sum.TerminalSoCKWh, 1e-9)
	assert.InDelta(t, 460/(500.0*2), sum.DieselCapFactor, 1e-12)
	assert.InDelta(t, 1.0, sum.SolarUtilization, 1e-12)
	// Baseline: 400 kWh of load at 0.6 plus 2h of no-load.
	assert.InDelta(t, 244, sum.BaselineCost, 1e-9)
	assert.InDelta(t, 244-280, sum.Savings, 1e-9)
}

func TestExtractRejectsBalanceViolation(t *testing.T) {
	cfg := testConfig()
	in := model.HorizonInput{LoadKW: []float64{100}, SolarKW: []float64{0}}
	p, idx := buildProblem(in, cfg)

	sol := solutionFor(p, func(name string) float64 {
		if name == "diesel[0]" {
			return 90 // ten short of the load
		}
		if name == "on[0]" {
			return 1
		}
		if name == "soc[0]" {
			return 500
		}
		return 0
	})

	_, _, err := extract(in, cfg, idx, sol)
	var cerr *InternalConsistencyError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "energy balance", cerr.Check)
	assert.Equal(t, 0, cerr.Hour)
}

func TestExtractRejectsGatingViolation(t *testing.T) {
	cfg := testConfig()
	cfg.BatteryCapacityKWh = 0
	in := model.HorizonInput{LoadKW: []float64{100}, SolarKW: []float64{0}}
	p, idx := buildProblem(in, cfg)

	// Output while the generator is flagged off.
	sol := solutionFor(p, func(name string) float64 {
		if name == "diesel[0]" {
			return 100
		}
		return 0
	})

	_, _, err := extract(in, cfg, idx, sol)
	var cerr *InternalConsistencyError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "generator gating", cerr.Check)
}

func TestExtractRejectsTerminalSoCViolation(t *testing.T) {
	cfg := testConfig()
	cfg.BatteryRoundTripEfficiency = 1
	in := model.HorizonInput{LoadKW: []float64{100}, SolarKW: []float64{0}}
	p, idx := buildProblem(in, cfg)

	sol := solutionFor(p, func(name string) float64 {
		switch name {
		case "discharge[0]":
			return 100
		case "soc[0]":
			return 400 // below the initial 500
		default:
			return 0
		}
	})

	_, _, err := extract(in, cfg, idx, sol)
	var cerr *InternalConsistencyError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "terminal soc", cerr.Check)
}
