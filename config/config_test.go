package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `input:
  series_path: "site.csv"
output:
  path: "result.json"
assets:
  diesel_capacity_kw: 500
  diesel_min_load_fraction: 0.3
  fuel_price_per_liter: 1.5
  diesel_slope_l_per_kwh: 0.25
  diesel_intercept_l_per_hour: 5
  carbon_tax_per_ton: 100
  battery_capacity_kwh: 1000
  battery_max_charge_kw: 250
  battery_max_discharge_kw: 250
  battery_initial_soc_kwh: 500
solver:
  time_limit_seconds: 10
sweep:
  max_concurrent_solves: 2
  candidates:
    - battery_capacity_kwh: 500
    - battery_capacity_kwh: 2000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "site.csv", cfg.Input.SeriesPath)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 10, cfg.Solver.TimeLimitSeconds)
	assert.Equal(t, 2, cfg.Sweep.MaxConcurrentSolves)
	require.Len(t, cfg.Sweep.Candidates, 2)

	m := cfg.Assets.ToModel()
	assert.InDelta(t, 0.375, m.FuelCostPerKWh, 1e-9)
	assert.InDelta(t, 0.067, m.CarbonTaxPerKWh, 1e-9)
	assert.InDelta(t, 8.84, m.DieselNoLoadCostPerHour, 1e-9)
	assert.Equal(t, 0.9, m.BatteryRoundTripEfficiency)
	assert.True(t, m.ExclusiveChargeDischarge)
}

func TestLoadDirectCosts(t *testing.T) {
	path := writeConfig(t, `input:
  series_path: "site.csv"
assets:
  diesel_capacity_kw: 400
  fuel_cost_per_kwh: 0.5
  carbon_tax_per_kwh: 0.1
  allow_simultaneous_charge_discharge: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	m := cfg.Assets.ToModel()
	assert.Equal(t, 0.5, m.FuelCostPerKWh)
	assert.Equal(t, 0.1, m.CarbonTaxPerKWh)
	assert.Equal(t, 0.01, m.CurtailmentPenaltyPerKWh)
	assert.False(t, m.ExclusiveChargeDischarge)
	assert.False(t, m.HasBattery())
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing input", "assets:\n  diesel_capacity_kw: 100\n  fuel_cost_per_kwh: 0.5\n"},
		{"bad min load fraction", `input:
  series_path: "site.csv"
assets:
  diesel_capacity_kw: 100
  diesel_min_load_fraction: 1.5
  fuel_cost_per_kwh: 0.5
`},
		{"bad output format", `input:
  series_path: "site.csv"
output:
  format: "xml"
assets:
  diesel_capacity_kw: 100
  fuel_cost_per_kwh: 0.5
`},
		{"negative candidate", `input:
  series_path: "site.csv"
assets:
  diesel_capacity_kw: 100
  fuel_cost_per_kwh: 0.5
sweep:
  candidates:
    - battery_capacity_kwh: -10
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
