package optimizer

import (
	"fmt"

	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/core/solver"
)

// index maps each per-hour decision variable to its column in the problem.
// A value of -1 means the variable was not created for this model (for example
// the charge-mode binary when exclusivity is disabled).
type index struct {
	hours     int
	diesel    []int
	dieselOn  []int
	charge    []int
	discharge []int
	solar     []int
	soc       []int
	mode      []int
}

func newIndex(h int) index {
	fill := func() []int {
		s := make([]int, h)
		for i := range s {
			s[i] = -1
		}
		return s
	}
	return index{
		hours:     h,
		diesel:    fill(),
		dieselOn:  fill(),
		charge:    fill(),
		discharge: fill(),
		solar:     fill(),
		soc:       fill(),
		mode:      fill(),
	}
}

// buildProblem translates the horizon input and asset configuration into a
// normalized MILP. Inputs are assumed validated.
//
// Per hour h the model holds:
//
//	diesel[h] + discharge[h] + solarUsed[h] = load[h] + charge[h]
//	minLoadFraction*cap*on[h] <= diesel[h] <= cap*on[h]
//	soc[h] = soc[h-1] + etaC*charge[h] - discharge[h]/etaD
//	soc[H-1] >= initial SoC
//
// and minimizes fuel, carbon, no-load and curtailment cost. The curtailment
// term penalty*(available-used) contributes a constant penalty*available to
// the objective offset and -penalty to the solarUsed coefficient.
func buildProblem(in model.HorizonInput, cfg model.AssetConfig) (*solver.Problem, index) {
	h := in.Hours()
	p := &solver.Problem{}
	idx := newIndex(h)

	etaC := cfg.ChargeEfficiency()
	etaD := cfg.DischargeEfficiency()

	for t := 0; t < h; t++ {
		if cfg.HasDiesel() {
			idx.diesel[t] = p.AddVar(fmt.Sprintf("diesel[%d]", t), 0, cfg.DieselCapacityKW)
			idx.dieselOn[t] = p.AddBinary(fmt.Sprintf("on[%d]", t))
		}
		if cfg.HasBattery() {
			idx.charge[t] = p.AddVar(fmt.Sprintf("charge[%d]", t), 0, cfg.BatteryMaxChargeKW)
			idx.discharge[t] = p.AddVar(fmt.Sprintf("discharge[%d]", t), 0, cfg.BatteryMaxDischargeKW)
			idx.soc[t] = p.AddVar(fmt.Sprintf("soc[%d]", t), 0, cfg.BatteryCapacityKWh)
			if cfg.ExclusiveChargeDischarge {
				idx.mode[t] = p.AddBinary(fmt.Sprintf("mode[%d]", t))
			}
		}
		idx.solar[t] = p.AddVar(fmt.Sprintf("solar[%d]", t), 0, in.SolarKW[t])
	}

	for t := 0; t < h; t++ {
		// Energy balance: diesel + discharge + solar - charge = load.
		balance := []solver.Term{{Var: idx.solar[t], Coeff: 1}}
		if cfg.HasDiesel() {
			balance = append(balance, solver.Term{Var: idx.diesel[t], Coeff: 1})
		}
		if cfg.HasBattery() {
			balance = append(balance,
				solver.Term{Var: idx.discharge[t], Coeff: 1},
				solver.Term{Var: idx.charge[t], Coeff: -1},
			)
		}
		p.AddConstraint(fmt.Sprintf("balance[%d]", t), balance, solver.Equal, in.LoadKW[t])

		if cfg.HasDiesel() {
			// Off forces zero output; on forces at least the minimum stable
			// load. Bounds are tight so no big-M is involved.
			p.AddConstraint(fmt.Sprintf("gen_min[%d]", t), []solver.Term{
				{Var: idx.diesel[t], Coeff: 1},
				{Var: idx.dieselOn[t], Coeff: -cfg.DieselMinLoadFraction * cfg.DieselCapacityKW},
			}, solver.GreaterEq, 0)
			p.AddConstraint(fmt.Sprintf("gen_max[%d]", t), []solver.Term{
				{Var: idx.diesel[t], Coeff: 1},
				{Var: idx.dieselOn[t], Coeff: -cfg.DieselCapacityKW},
			}, solver.LessEq, 0)
		}

		if cfg.HasBattery() {
			// State of charge recurrence. All SoC values are first-class
			// variables so the solver sees the whole trajectory at once.
			soc := []solver.Term{
				{Var: idx.soc[t], Coeff: 1},
				{Var: idx.charge[t], Coeff: -etaC},
				{Var: idx.discharge[t], Coeff: 1 / etaD},
			}
			rhs := 0.0
			if t == 0 {
				rhs = cfg.BatteryInitialSoCKWh
			} else {
				soc = append(soc, solver.Term{Var: idx.soc[t-1], Coeff: -1})
			}
			p.AddConstraint(fmt.Sprintf("soc[%d]", t), soc, solver.Equal, rhs)

			if cfg.ExclusiveChargeDischarge {
				// mode=1 permits charging, mode=0 permits discharging.
				p.AddConstraint(fmt.Sprintf("charge_mode[%d]", t), []solver.Term{
					{Var: idx.charge[t], Coeff: 1},
					{Var: idx.mode[t], Coeff: -cfg.BatteryMaxChargeKW},
				}, solver.LessEq, 0)
				p.AddConstraint(fmt.Sprintf("discharge_mode[%d]", t), []solver.Term{
					{Var: idx.discharge[t], Coeff: 1},
					{Var: idx.mode[t], Coeff: cfg.BatteryMaxDischargeKW},
				}, solver.LessEq, cfg.BatteryMaxDischargeKW)
			}
		}
	}

	if cfg.HasBattery() {
		// No net depletion across the horizon.
		p.AddConstraint("soc_terminal", []solver.Term{
			{Var: idx.soc[h-1], Coeff: 1},
		}, solver.GreaterEq, cfg.BatteryInitialSoCKWh)
	}

	dieselCost := cfg.FuelCostPerKWh + cfg.CarbonTaxPerKWh
	for t := 0; t < h; t++ {
		if cfg.HasDiesel() {
			p.SetObjective(idx.diesel[t], dieselCost)
			p.SetObjective(idx.dieselOn[t], cfg.DieselNoLoadCostPerHour)
		}
		p.SetObjective(idx.solar[t], -cfg.CurtailmentPenaltyPerKWh)
		p.Offset += cfg.CurtailmentPenaltyPerKWh * in.SolarKW[t]
	}
	return p, idx
}

// suspectHours lists hours likely responsible for an infeasibility: either the
// load exceeds everything the assets can deliver, or the generator's minimum
// stable floor exceeds what load plus battery charging can absorb.
func suspectHours(in model.HorizonInput, cfg model.AssetConfig) ([]int, string) {
	var hours []int
	hint := ""
	for t := 0; t < in.Hours(); t++ {
		deliverable := cfg.DieselCapacityKW + in.SolarKW[t]
		if cfg.HasBattery() {
			deliverable += cfg.BatteryMaxDischargeKW
		}
		if in.LoadKW[t] > deliverable {
			hours = append(hours, t)
			hint = "load exceeds combined diesel, battery and solar capacity"
			continue
		}
		floor := cfg.DieselMinLoadFraction * cfg.DieselCapacityKW
		absorbable := in.LoadKW[t]
		if cfg.HasBattery() {
			absorbable += cfg.BatteryMaxChargeKW
		}
		if cfg.HasDiesel() && floor > absorbable && in.SolarKW[t] == 0 && !cfg.HasBattery() {
			hours = append(hours, t)
			hint = "generator minimum stable load exceeds demand"
		}
	}
	return hours, hint
}
