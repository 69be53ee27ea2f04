package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/core/solver"
)

func testInput(h int) model.HorizonInput {
	in := model.HorizonInput{LoadKW: make([]float64, h), SolarKW: make([]float64, h)}
	for t := 0; t < h; t++ {
		in.LoadKW[t] = 100
		in.SolarKW[t] = 40
	}
	return in
}

func testConfig() model.AssetConfig {
	return model.AssetConfig{
		DieselCapacityKW:           500,
		DieselMinLoadFraction:      0.3,
		FuelCostPerKWh:             0.5,
		CarbonTaxPerKWh:            0.1,
		BatteryCapacityKWh:         1000,
		BatteryMaxChargeKW:         250,
		BatteryMaxDischargeKW:      250,
		BatteryRoundTripEfficiency: 0.81,
		BatteryInitialSoCKWh:       500,
		CurtailmentPenaltyPerKWh:   0.01,
	}
}

func TestBuildProblemShape(t *testing.T) {
	h := 4
	p, idx := buildProblem(testInput(h), testConfig())

	// Per hour: diesel, on, charge, discharge, soc, solar.
	assert.Len(t, p.Vars, 6*h)
	assert.Equal(t, h, p.NumBinaries())
	// Per hour: balance, gen_min, gen_max, soc; plus the terminal constraint.
	assert.Len(t, p.Cons, 4*h+1)

	for t2 := 0; t2 < h; t2++ {
		assert.GreaterOrEqual(t, idx.diesel[t2], 0)
		assert.GreaterOrEqual(t, idx.soc[t2], 0)
		assert.Equal(t, -1, idx.mode[t2], "mode binary should not exist without exclusivity")
	}

	// Solar bound follows availability, SoC bound follows capacity.
	assert.Equal(t, 40.0, p.Vars[idx.solar[0]].Hi)
	assert.Equal(t, 1000.0, p.Vars[idx.soc[0]].Hi)
	assert.Equal(t, 500.0, p.Vars[idx.diesel[0]].Hi)
}

func TestBuildProblemExclusivityBinaries(t *testing.T) {
	cfg := testConfig()
	cfg.ExclusiveChargeDischarge = true
	h := 3
	p, idx := buildProblem(testInput(h), cfg)

	assert.Equal(t, 2*h, p.NumBinaries())
	for t2 := 0; t2 < h; t2++ {
		require.GreaterOrEqual(t, idx.mode[t2], 0)
	}
	// Two extra rows per hour gate charge and discharge on the mode binary.
	assert.Len(t, p.Cons, 6*h+1)
}

func TestBuildProblemNoAssets(t *testing.T) {
	cfg := model.AssetConfig{CurtailmentPenaltyPerKWh: 0.01}
	in := model.HorizonInput{LoadKW: []float64{50}, SolarKW: []float64{80}}
	p, idx := buildProblem(in, cfg)

	// Only the solar variable and the balance constraint remain.
	assert.Len(t, p.Vars, 1)
	assert.Len(t, p.Cons, 1)
	assert.Equal(t, -1, idx.diesel[0])
	assert.Equal(t, -1, idx.soc[0])
	assert.InDelta(t, 0.8, p.Offset, 1e-12)
	assert.InDelta(t, -0.01, p.Objective[idx.solar[0]], 1e-12)
}

func TestBuildProblemSoCRecurrenceCoefficients(t *testing.T) {
	cfg := testConfig()
	cfg.BatteryRoundTripEfficiency = 0.81 // sqrt split: 0.9 per leg
	in := testInput(2)
	p, idx := buildProblem(in, cfg)

	var socCon *solver.Constraint
	for i := range p.Cons {
		if p.Cons[i].Name == "soc[1]" {
			socCon = &p.Cons[i]
		}
	}
	require.NotNil(t, socCon)
	require.Equal(t, solver.Equal, socCon.Sense)
	coeff := map[int]float64{}
	for _, term := range socCon.Terms {
		coeff[term.Var] = term.Coeff
	}
	assert.InDelta(t, 1, coeff[idx.soc[1]], 1e-12)
	assert.InDelta(t, -1, coeff[idx.soc[0]], 1e-12)
	assert.InDelta(t, -0.9, coeff[idx.charge[1]], 1e-9)
	assert.InDelta(t, 1/0.9, coeff[idx.discharge[1]], 1e-9)
	assert.Equal(t, 0.0, socCon.RHS)

	// Hour zero is seeded with the initial state of charge.
	for i := range p.Cons {
		if p.Cons[i].Name == "soc[0]" {
			assert.Equal(t, cfg.BatteryInitialSoCKWh, p.Cons[i].RHS)
		}
	}
}

func TestSuspectHours(t *testing.T) {
	cfg := testConfig()
	in := testInput(3)
	in.LoadKW[1] = 5000 // above diesel + discharge + solar

	hours, hint := suspectHours(in, cfg)
	assert.Equal(t, []int{1}, hours)
	assert.Contains(t, hint, "exceeds")

	// Min stable floor above demand with nothing to absorb the surplus.
	cfg2 := model.AssetConfig{DieselCapacityKW: 500, DieselMinLoadFraction: 0.5}
	in2 := model.HorizonInput{LoadKW: []float64{10}, SolarKW: []float64{0}}
	hours2, hint2 := suspectHours(in2, cfg2)
	assert.Equal(t, []int{0}, hours2)
	assert.Contains(t, hint2, "minimum stable load")
}
