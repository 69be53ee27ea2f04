// Package scenarios runs yaml-defined dispatch cases end to end against the
// optimization engine.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridwise/microdispatch/core/model"
)

type AssetDef struct {
	DieselCapacityKW      float64 `yaml:"diesel_capacity_kw"`
	DieselMinLoadFraction float64 `yaml:"diesel_min_load_fraction"`
	FuelCostPerKWh        float64 `yaml:"fuel_cost_per_kwh"`
	CarbonTaxPerKWh       float64 `yaml:"carbon_tax_per_kwh"`
	NoLoadCostPerHour     float64 `yaml:"no_load_cost_per_hour"`

	BatteryCapacityKWh         float64 `yaml:"battery_capacity_kwh"`
	BatteryMaxChargeKW         float64 `yaml:"battery_max_charge_kw"`
	BatteryMaxDischargeKW      float64 `yaml:"battery_max_discharge_kw"`
	BatteryRoundTripEfficiency float64 `yaml:"battery_round_trip_efficiency"`
	BatteryInitialSoCKWh       float64 `yaml:"battery_initial_soc_kwh"`

	CurtailmentPenaltyPerKWh float64 `yaml:"curtailment_penalty_per_kwh"`
	ExclusiveChargeDischarge bool    `yaml:"exclusive_charge_discharge"`
}

func (a AssetDef) ToModel() model.AssetConfig {
	return model.AssetConfig{
		DieselCapacityKW:           a.DieselCapacityKW,
		DieselMinLoadFraction:      a.DieselMinLoadFraction,
		FuelCostPerKWh:             a.FuelCostPerKWh,
		CarbonTaxPerKWh:            a.CarbonTaxPerKWh,
		DieselNoLoadCostPerHour:    a.NoLoadCostPerHour,
		BatteryCapacityKWh:         a.BatteryCapacityKWh,
		BatteryMaxChargeKW:         a.BatteryMaxChargeKW,
		BatteryMaxDischargeKW:      a.BatteryMaxDischargeKW,
		BatteryRoundTripEfficiency: a.BatteryRoundTripEfficiency,
		BatteryInitialSoCKWh:       a.BatteryInitialSoCKWh,
		CurtailmentPenaltyPerKWh:   a.CurtailmentPenaltyPerKWh,
		ExclusiveChargeDischarge:   a.ExclusiveChargeDischarge,
	}
}

type Expected struct {
	Infeasible      bool    `yaml:"infeasible"`
	TotalCost       float64 `yaml:"total_cost"`
	DieselEnergyKWh float64 `yaml:"diesel_energy_kwh"`
	CurtailedKWh    float64 `yaml:"curtailed_kwh"`
	// Tolerance bounds the cost and energy comparisons; 0 uses 1e-4.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	LoadKW      []float64 `yaml:"load_kw"`
	SolarKW     []float64 `yaml:"solar_kw"`
	Assets      AssetDef  `yaml:"assets"`
	Expected    Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
