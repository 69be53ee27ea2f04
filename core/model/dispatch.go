package model

import "time"

// DispatchDecision is the dispatch of all assets for a single hour. SoCKWh is
// the battery state of charge at the end of the hour.
type DispatchDecision struct {
	Hour        int     `json:"hour"`
	DieselKW    float64 `json:"diesel_kw"`
	DieselOn    bool    `json:"diesel_on"`
	ChargeKW    float64 `json:"charge_kw"`
	DischargeKW float64 `json:"discharge_kw"`
	SolarUsedKW float64 `json:"solar_used_kw"`
	SoCKWh      float64 `json:"soc_kwh"`
}

// Summary aggregates the economics of a solved horizon.
type Summary struct {
	FuelCost        float64 `json:"fuel_cost"`
	CarbonCost      float64 `json:"carbon_cost"`
	CurtailmentCost float64 `json:"curtailment_cost"`
	TotalCost       float64 `json:"total_cost"`

	DieselEnergyKWh  float64 `json:"diesel_energy_kwh"`
	DieselRuntimeHrs int     `json:"diesel_runtime_hours"`
	CurtailedKWh     float64 `json:"curtailed_kwh"`
	TerminalSoCKWh   float64 `json:"terminal_soc_kwh"`
	DieselCapFactor  float64 `json:"diesel_capacity_factor"`
	BatteryCapFactor float64 `json:"battery_capacity_factor"`
	SolarUtilization float64 `json:"solar_utilization"`

	// BaselineCost is the cost of serving the whole load from diesel alone,
	// the reference point used for the savings figure.
	BaselineCost float64 `json:"baseline_cost"`
	Savings      float64 `json:"savings"`
}

// Result is the full outcome of one optimization run. It is a plain value with
// no solver handles and is safe to serialize for the dashboard and reports.
type Result struct {
	RunID   string             `json:"run_id"`
	Hours   []DispatchDecision `json:"hours"`
	Summary Summary            `json:"summary"`

	// Objective is the solver's objective value, including the curtailment
	// penalty constant.
	Objective float64 `json:"objective"`
	// NotProvenOptimal is set when the solver hit its time limit and returned
	// the best incumbent without closing the optimality gap.
	NotProvenOptimal bool          `json:"not_proven_optimal"`
	Gap              float64       `json:"gap"`
	SolveTime        time.Duration `json:"solve_time_ns"`
}
