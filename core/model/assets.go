package model

import (
	"fmt"
	"math"
)

// EfficiencySplit selects how battery round-trip losses are attributed to the
// charge and discharge legs in the state-of-charge recurrence.
type EfficiencySplit string

const (
	// SplitSqrt applies sqrt(eta) on each leg, splitting the loss symmetrically.
	SplitSqrt EfficiencySplit = "sqrt"
	// SplitCharge applies the full loss when charging.
	SplitCharge EfficiencySplit = "charge"
	// SplitDischarge applies the full loss when discharging.
	SplitDischarge EfficiencySplit = "discharge"
)

// AssetConfig describes the dispatchable assets for one optimization run. It is
// constructed once per run and treated as read-only; concurrent runs must each
// own their own copy.
type AssetConfig struct {
	// Diesel generator.
	DieselCapacityKW      float64 `json:"diesel_capacity_kw"`
	DieselMinLoadFraction float64 `json:"diesel_min_load_fraction"`
	FuelCostPerKWh        float64 `json:"fuel_cost_per_kwh"`
	CarbonTaxPerKWh       float64 `json:"carbon_tax_per_kwh"`
	// DieselNoLoadCostPerHour is the fixed cost of keeping the generator
	// running for an hour regardless of output (intercept of the fuel curve).
	DieselNoLoadCostPerHour float64 `json:"diesel_no_load_cost_per_hour"`

	// Battery storage.
	BatteryCapacityKWh         float64 `json:"battery_capacity_kwh"`
	BatteryMaxChargeKW         float64 `json:"battery_max_charge_kw"`
	BatteryMaxDischargeKW      float64 `json:"battery_max_discharge_kw"`
	BatteryRoundTripEfficiency float64 `json:"battery_round_trip_efficiency"`
	BatteryInitialSoCKWh       float64 `json:"battery_initial_soc_kwh"`

	CurtailmentPenaltyPerKWh float64 `json:"curtailment_penalty_per_kwh"`

	// EfficiencySplit selects the loss convention; empty means SplitSqrt.
	EfficiencySplit EfficiencySplit `json:"efficiency_split"`
	// ExclusiveChargeDischarge adds a binary mode variable per hour forbidding
	// simultaneous charge and discharge. When false, exclusivity is left to the
	// objective: with losses and non-negative costs, charging while discharging
	// is strictly dominated.
	ExclusiveChargeDischarge bool `json:"exclusive_charge_discharge"`
}

// HasBattery reports whether a battery is present. A zero-capacity battery is
// modeled as absent: its charge, discharge and SoC variables are fixed to zero.
func (c AssetConfig) HasBattery() bool { return c.BatteryCapacityKWh > 0 }

// HasDiesel reports whether a generator is present.
func (c AssetConfig) HasDiesel() bool { return c.DieselCapacityKW > 0 }

// ChargeEfficiency returns the multiplier applied to charged energy.
func (c AssetConfig) ChargeEfficiency() float64 {
	switch c.split() {
	case SplitCharge:
		return c.BatteryRoundTripEfficiency
	case SplitDischarge:
		return 1
	default:
		return math.Sqrt(c.BatteryRoundTripEfficiency)
	}
}

// DischargeEfficiency returns the divisor applied to discharged energy.
func (c AssetConfig) DischargeEfficiency() float64 {
	switch c.split() {
	case SplitCharge:
		return 1
	case SplitDischarge:
		return c.BatteryRoundTripEfficiency
	default:
		return math.Sqrt(c.BatteryRoundTripEfficiency)
	}
}

func (c AssetConfig) split() EfficiencySplit {
	if c.EfficiencySplit == "" {
		return SplitSqrt
	}
	return c.EfficiencySplit
}

// Validate checks sign and range constraints. Violations are reported as
// ConfigurationError values so callers can fail fast before any solver work.
func (c AssetConfig) Validate() error {
	if c.DieselCapacityKW < 0 {
		return configErrf("diesel_capacity_kw", "must be >= 0, got %v", c.DieselCapacityKW)
	}
	if c.DieselMinLoadFraction < 0 || c.DieselMinLoadFraction >= 1 {
		return configErrf("diesel_min_load_fraction", "must be in [0,1), got %v", c.DieselMinLoadFraction)
	}
	if c.FuelCostPerKWh < 0 {
		return configErrf("fuel_cost_per_kwh", "must be >= 0, got %v", c.FuelCostPerKWh)
	}
	if c.CarbonTaxPerKWh < 0 {
		return configErrf("carbon_tax_per_kwh", "must be >= 0, got %v", c.CarbonTaxPerKWh)
	}
	if c.DieselNoLoadCostPerHour < 0 {
		return configErrf("diesel_no_load_cost_per_hour", "must be >= 0, got %v", c.DieselNoLoadCostPerHour)
	}
	if c.BatteryCapacityKWh < 0 {
		return configErrf("battery_capacity_kwh", "must be >= 0, got %v", c.BatteryCapacityKWh)
	}
	if c.HasBattery() {
		if c.BatteryMaxChargeKW <= 0 {
			return configErrf("battery_max_charge_kw", "must be > 0, got %v", c.BatteryMaxChargeKW)
		}
		if c.BatteryMaxDischargeKW <= 0 {
			return configErrf("battery_max_discharge_kw", "must be > 0, got %v", c.BatteryMaxDischargeKW)
		}
		if c.BatteryRoundTripEfficiency <= 0 || c.BatteryRoundTripEfficiency > 1 {
			return configErrf("battery_round_trip_efficiency", "must be in (0,1], got %v", c.BatteryRoundTripEfficiency)
		}
		if c.BatteryInitialSoCKWh < 0 || c.BatteryInitialSoCKWh > c.BatteryCapacityKWh {
			return configErrf("battery_initial_soc_kwh", "must be in [0,%v], got %v", c.BatteryCapacityKWh, c.BatteryInitialSoCKWh)
		}
	}
	if c.CurtailmentPenaltyPerKWh < 0 {
		return configErrf("curtailment_penalty_per_kwh", "must be >= 0, got %v", c.CurtailmentPenaltyPerKWh)
	}
	switch c.split() {
	case SplitSqrt, SplitCharge, SplitDischarge:
	default:
		return configErrf("efficiency_split", "unknown mode %q", c.EfficiencySplit)
	}
	return nil
}

// ConfigurationError reports an invalid AssetConfig or HorizonInput field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func configErrf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
