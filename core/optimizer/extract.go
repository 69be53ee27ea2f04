package optimizer

import (
	"fmt"
	"math"

	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/core/solver"
)

// balanceTol is the relative tolerance for the post-solve consistency checks.
const balanceTol = 1e-6

// extract maps the raw variable assignment back into per-hour decisions and
// summary economics. Solutions are not trusted blindly: every invariant is
// re-checked and a violation is returned as an InternalConsistencyError.
func extract(in model.HorizonInput, cfg model.AssetConfig, idx index, sol *solver.Solution) ([]model.DispatchDecision, model.Summary, error) {
	h := in.Hours()
	hours := make([]model.DispatchDecision, h)
	for t := 0; t < h; t++ {
		d := model.DispatchDecision{
			Hour:        t,
			SolarUsedKW: clampLow(sol.Value(idx.solar[t])),
		}
		if cfg.HasDiesel() {
			d.DieselKW = clampLow(sol.Value(idx.diesel[t]))
			d.DieselOn = sol.Value(idx.dieselOn[t]) > 0.5
		}
		if cfg.HasBattery() {
			d.ChargeKW = clampLow(sol.Value(idx.charge[t]))
			d.DischargeKW = clampLow(sol.Value(idx.discharge[t]))
			d.SoCKWh = sol.Value(idx.soc[t])
		}
		hours[t] = d
	}

	if err := validate(in, cfg, hours); err != nil {
		return hours, model.Summary{}, err
	}
	return hours, summarize(in, cfg, hours), nil
}

// validate re-checks balance, SoC bounds and generator gating on the extracted
// schedule.
func validate(in model.HorizonInput, cfg model.AssetConfig, hours []model.DispatchDecision) error {
	h := len(hours)
	for t, d := range hours {
		supply := d.DieselKW + d.DischargeKW + d.SolarUsedKW
		demand := in.LoadKW[t] + d.ChargeKW
		if math.Abs(supply-demand) > balanceTol*math.Max(1, demand) {
			return &InternalConsistencyError{
				Hour:   t,
				Check:  "energy balance",
				Detail: fmt.Sprintf("supply %v != demand %v", supply, demand),
			}
		}
		if d.SolarUsedKW > in.SolarKW[t]+balanceTol {
			return &InternalConsistencyError{
				Hour:   t,
				Check:  "solar bound",
				Detail: fmt.Sprintf("used %v > available %v", d.SolarUsedKW, in.SolarKW[t]),
			}
		}
		if cfg.HasBattery() {
			if d.SoCKWh < -balanceTol || d.SoCKWh > cfg.BatteryCapacityKWh+balanceTol {
				return &InternalConsistencyError{
					Hour:   t,
					Check:  "soc bounds",
					Detail: fmt.Sprintf("soc %v outside [0,%v]", d.SoCKWh, cfg.BatteryCapacityKWh),
				}
			}
		}
		if cfg.HasDiesel() {
			if !d.DieselOn && d.DieselKW > balanceTol {
				return &InternalConsistencyError{
					Hour:   t,
					Check:  "generator gating",
					Detail: fmt.Sprintf("output %v while off", d.DieselKW),
				}
			}
			minLoad := cfg.DieselMinLoadFraction * cfg.DieselCapacityKW
			if d.DieselOn && d.DieselKW < minLoad-balanceTol {
				return &InternalConsistencyError{
					Hour:   t,
					Check:  "generator gating",
					Detail: fmt.Sprintf("output %v below minimum stable load %v", d.DieselKW, minLoad),
				}
			}
			if d.DieselKW > cfg.DieselCapacityKW+balanceTol {
				return &InternalConsistencyError{
					Hour:   t,
					Check:  "generator gating",
					Detail: fmt.Sprintf("output %v above capacity %v", d.DieselKW, cfg.DieselCapacityKW),
				}
			}
		}
	}
	if cfg.HasBattery() && hours[h-1].SoCKWh < cfg.BatteryInitialSoCKWh-balanceTol*math.Max(1, cfg.BatteryInitialSoCKWh) {
		return &InternalConsistencyError{
			Hour:   h - 1,
			Check:  "terminal soc",
			Detail: fmt.Sprintf("terminal %v below initial %v", hours[h-1].SoCKWh, cfg.BatteryInitialSoCKWh),
		}
	}
	return nil
}

func summarize(in model.HorizonInput, cfg model.AssetConfig, hours []model.DispatchDecision) model.Summary {
	var s model.Summary
	var solarAvail, solarUsed, discharged float64
	for t, d := range hours {
		s.DieselEnergyKWh += d.DieselKW
		if d.DieselOn {
			s.DieselRuntimeHrs++
		}
		solarAvail += in.SolarKW[t]
		solarUsed += d.SolarUsedKW
		discharged += d.DischargeKW
	}
	h := float64(len(hours))

	// The no-load term is priced with the blended fuel+carbon rate and
	// attributed to fuel cost in the breakdown.
	s.FuelCost = s.DieselEnergyKWh*cfg.FuelCostPerKWh + float64(s.DieselRuntimeHrs)*cfg.DieselNoLoadCostPerHour
	s.CarbonCost = s.DieselEnergyKWh * cfg.CarbonTaxPerKWh
	s.CurtailedKWh = solarAvail - solarUsed
	s.CurtailmentCost = cfg.CurtailmentPenaltyPerKWh * s.CurtailedKWh
	s.TotalCost = s.FuelCost + s.CarbonCost + s.CurtailmentCost
	s.TerminalSoCKWh = hours[len(hours)-1].SoCKWh

	if cfg.HasDiesel() {
		s.DieselCapFactor = s.DieselEnergyKWh / (cfg.DieselCapacityKW * h)
	}
	if cfg.HasBattery() {
		s.BatteryCapFactor = discharged / (cfg.BatteryMaxDischargeKW * h)
	}
	if solarAvail > 0 {
		s.SolarUtilization = solarUsed / solarAvail
	}

	// Reference cost of serving the whole load from diesel alone, with the
	// generator running every hour.
	var loadSum float64
	for _, v := range in.LoadKW {
		loadSum += v
	}
	s.BaselineCost = loadSum*(cfg.FuelCostPerKWh+cfg.CarbonTaxPerKWh) + h*cfg.DieselNoLoadCostPerHour
	s.Savings = s.BaselineCost - (s.FuelCost + s.CarbonCost)
	return s
}

func clampLow(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
