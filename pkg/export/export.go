// Package export serializes optimization results for downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/core/sweep"
)

// WriteJSON writes the full result, schedule and summary included, to w.
func WriteJSON(w io.Writer, res *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes the hourly schedule to w, one row per hour.
func WriteCSV(w io.Writer, res *model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"hour", "diesel_kw", "diesel_on", "charge_kw", "discharge_kw", "solar_used_kw", "soc_kwh",
	}); err != nil {
		return err
	}
	for _, d := range res.Hours {
		rec := []string{
			strconv.Itoa(d.Hour),
			fmtFloat(d.DieselKW),
			strconv.FormatBool(d.DieselOn),
			fmtFloat(d.ChargeKW),
			fmtFloat(d.DischargeKW),
			fmtFloat(d.SolarUsedKW),
			fmtFloat(d.SoCKWh),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSweepJSON writes ranked sweep outcomes to w.
func WriteSweepJSON(w io.Writer, outcomes []sweep.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomes)
}

// WriteSweepCSV writes one row per candidate, ranked as given.
func WriteSweepCSV(w io.Writer, outcomes []sweep.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"battery_capacity_kwh", "diesel_capacity_kw", "solar_scale", "total_cost", "savings", "error",
	}); err != nil {
		return err
	}
	for _, o := range outcomes {
		rec := []string{
			fmtFloat(o.Candidate.BatteryCapacityKWh),
			fmtFloat(o.Candidate.DieselCapacityKW),
			fmtFloat(o.Candidate.SolarScale),
			"", "", o.ErrText,
		}
		if o.Result != nil {
			rec[3] = fmtFloat(o.Result.Summary.TotalCost)
			rec[4] = fmtFloat(o.Result.Summary.Savings)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
