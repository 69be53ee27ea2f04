package model

// HorizonInput holds the per-hour load demand and available solar generation
// for one planning horizon. Both series must have the same length H; hour h is
// the element at index h. The engine is agnostic to the actual time unit as
// long as power and cost rates are consistent.
type HorizonInput struct {
	LoadKW  []float64 `json:"load_kw"`
	SolarKW []float64 `json:"solar_kw"`
}

// Hours returns the horizon length H.
func (in HorizonInput) Hours() int { return len(in.LoadKW) }

// Validate checks series lengths and signs.
func (in HorizonInput) Validate() error {
	if len(in.LoadKW) == 0 {
		return configErrf("load_kw", "horizon is empty")
	}
	if len(in.LoadKW) != len(in.SolarKW) {
		return configErrf("solar_kw", "length %d does not match load length %d", len(in.SolarKW), len(in.LoadKW))
	}
	for h, v := range in.LoadKW {
		if v < 0 {
			return configErrf("load_kw", "negative load %v at hour %d", v, h)
		}
	}
	for h, v := range in.SolarKW {
		if v < 0 {
			return configErrf("solar_kw", "negative solar %v at hour %d", v, h)
		}
	}
	return nil
}
