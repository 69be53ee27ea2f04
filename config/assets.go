package config

import (
	"github.com/gridwise/microdispatch/core/model"
)

// AssetsConfig describes the site assets and their economics. Costs may be
// given directly per kWh, or derived from a fuel curve: when fuel_price_per_liter
// and diesel_slope_l_per_kwh are set, per-kWh fuel and carbon costs and the
// hourly no-load cost are computed from them.
type AssetsConfig struct {
	DieselCapacityKW      float64 `json:"diesel_capacity_kw"`
	DieselMinLoadFraction float64 `json:"diesel_min_load_fraction"`

	FuelCostPerKWh          float64 `json:"fuel_cost_per_kwh"`
	CarbonTaxPerKWh         float64 `json:"carbon_tax_per_kwh"`
	DieselNoLoadCostPerHour float64 `json:"diesel_no_load_cost_per_hour"`

	FuelPricePerLiter       float64 `json:"fuel_price_per_liter"`
	DieselSlopeLPerKWh      float64 `json:"diesel_slope_l_per_kwh"`
	DieselInterceptLPerHour float64 `json:"diesel_intercept_l_per_hour"`
	CarbonTaxPerTon         float64 `json:"carbon_tax_per_ton"`
	CarbonKgPerLiter        float64 `json:"carbon_kg_per_liter"`

	BatteryCapacityKWh         float64 `json:"battery_capacity_kwh"`
	BatteryMaxChargeKW         float64 `json:"battery_max_charge_kw"`
	BatteryMaxDischargeKW      float64 `json:"battery_max_discharge_kw"`
	BatteryRoundTripEfficiency float64 `json:"battery_round_trip_efficiency"`
	BatteryInitialSoCKWh       float64 `json:"battery_initial_soc_kwh"`

	CurtailmentPenaltyPerKWh float64 `json:"curtailment_penalty_per_kwh"`
	EfficiencySplit          string  `json:"efficiency_split"`
	// AllowSimultaneousChargeDischarge drops the exclusivity binary; the
	// default keeps charging and discharging mutually exclusive per hour.
	AllowSimultaneousChargeDischarge bool `json:"allow_simultaneous_charge_discharge"`
}

// SetDefaults applies fallback values for optional fields.
func (c *AssetsConfig) SetDefaults() {
	if c.CarbonKgPerLiter == 0 {
		c.CarbonKgPerLiter = 2.68
	}
	if c.CurtailmentPenaltyPerKWh == 0 {
		c.CurtailmentPenaltyPerKWh = 0.01
	}
	if c.EfficiencySplit == "" {
		c.EfficiencySplit = string(model.SplitSqrt)
	}
	if c.BatteryCapacityKWh > 0 && c.BatteryRoundTripEfficiency == 0 {
		c.BatteryRoundTripEfficiency = 0.9
	}
}

// ToModel derives the per-kWh economics where the fuel curve is configured and
// returns the immutable asset configuration used by the optimizer.
func (c AssetsConfig) ToModel() model.AssetConfig {
	fuel := c.FuelCostPerKWh
	carbon := c.CarbonTaxPerKWh
	noLoad := c.DieselNoLoadCostPerHour
	if c.FuelPricePerLiter > 0 && c.DieselSlopeLPerKWh > 0 {
		carbonPerLiter := c.CarbonKgPerLiter * c.CarbonTaxPerTon / 1000
		if fuel == 0 {
			fuel = c.DieselSlopeLPerKWh * c.FuelPricePerLiter
		}
		if carbon == 0 {
			carbon = c.DieselSlopeLPerKWh * carbonPerLiter
		}
		if noLoad == 0 {
			noLoad = c.DieselInterceptLPerHour * (c.FuelPricePerLiter + carbonPerLiter)
		}
	}
	return model.AssetConfig{
		DieselCapacityKW:           c.DieselCapacityKW,
		DieselMinLoadFraction:      c.DieselMinLoadFraction,
		FuelCostPerKWh:             fuel,
		CarbonTaxPerKWh:            carbon,
		DieselNoLoadCostPerHour:    noLoad,
		BatteryCapacityKWh:         c.BatteryCapacityKWh,
		BatteryMaxChargeKW:         c.BatteryMaxChargeKW,
		BatteryMaxDischargeKW:      c.BatteryMaxDischargeKW,
		BatteryRoundTripEfficiency: c.BatteryRoundTripEfficiency,
		BatteryInitialSoCKWh:       c.BatteryInitialSoCKWh,
		CurtailmentPenaltyPerKWh:   c.CurtailmentPenaltyPerKWh,
		EfficiencySplit:            model.EfficiencySplit(c.EfficiencySplit),
		ExclusiveChargeDischarge:   !c.AllowSimultaneousChargeDischarge,
	}
}

// Validate checks the derived asset configuration.
func (c AssetsConfig) Validate() error {
	return c.ToModel().Validate()
}
