// Package timeseries reads the load and solar series consumed by the
// optimizer. It is a pure data adapter: values are parsed and validated, never
// transformed.
package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gridwise/microdispatch/core/model"
)

// ReadCSV parses an hourly series from r. The expected header is
// "hour,load_kw,solar_kw"; extra columns are ignored and rows must carry
// dense, ascending hour indices starting at zero.
func ReadCSV(r io.Reader) (model.HorizonInput, error) {
	var in model.HorizonInput
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return in, fmt.Errorf("read header: %w", err)
	}
	hourCol, loadCol, solarCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "hour":
			hourCol = i
		case "load_kw":
			loadCol = i
		case "solar_kw":
			solarCol = i
		}
	}
	if hourCol < 0 || loadCol < 0 || solarCol < 0 {
		return in, fmt.Errorf("header must contain hour, load_kw and solar_kw columns, got %v", header)
	}

	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return in, fmt.Errorf("read row %d: %w", row, err)
		}
		hour, err := strconv.Atoi(strings.TrimSpace(rec[hourCol]))
		if err != nil {
			return in, fmt.Errorf("row %d: bad hour %q", row, rec[hourCol])
		}
		if hour != row {
			return in, fmt.Errorf("row %d: expected hour %d, got %d", row, row, hour)
		}
		load, err := strconv.ParseFloat(strings.TrimSpace(rec[loadCol]), 64)
		if err != nil {
			return in, fmt.Errorf("row %d: bad load %q", row, rec[loadCol])
		}
		solar, err := strconv.ParseFloat(strings.TrimSpace(rec[solarCol]), 64)
		if err != nil {
			return in, fmt.Errorf("row %d: bad solar %q", row, rec[solarCol])
		}
		in.LoadKW = append(in.LoadKW, load)
		in.SolarKW = append(in.SolarKW, solar)
		row++
	}
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// LoadCSV reads an hourly series from a file.
func LoadCSV(path string) (model.HorizonInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.HorizonInput{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}
