package dataset

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
)

//go:embed msleep.csv
var msleepCSV string

var loadMSleep = sync.OnceValues(func() ([]Observation, error) {
	return ReadCSV(strings.NewReader(msleepCSV))
})

// MSleep returns the built-in table of 83 mammal species.
// The returned slice is a fresh copy and may be modified by the caller.
func MSleep() ([]Observation, error) {
	obs, err := loadMSleep()
	if err != nil {
		return nil, fmt.Errorf("load built-in dataset: %w", err)
	}

	return slices.Clone(obs), nil
}

// ReadCSV parses a header-first CSV table into observations.
//
// Header names are matched case-insensitively after trimming. All of
// RequiredColumns must be present; other known columns are optional and unknown
// ones are ignored. Empty cells and "NA" denote missing values. A missing
// sleep_total or bodywt value, or any unparsable number, is an ErrMalformed error.
func ReadCSV(r io.Reader) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input, no header row", ErrMalformed)
		}

		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	reader.FieldsPerRecord = len(header)

	var out []Observation
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		obs, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, obs)
	}

	return out, nil
}

func parseRecord(record []string, index map[string]int) (Observation, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok {
			return ""
		}

		return strings.TrimSpace(record[i])
	}

	obs := Observation{
		Name:         cell(ColName),
		Genus:        naString(cell(ColGenus)),
		Vore:         naString(cell(ColVore)),
		Order:        naString(cell(ColOrder)),
		Conservation: naString(cell(ColConservation)),
	}

	var err error
	if obs.SleepTotal, err = requiredFloat(ColSleepTotal, cell(ColSleepTotal)); err != nil {
		return Observation{}, err
	}
	if obs.BodyWt, err = requiredFloat(ColBodyWt, cell(ColBodyWt)); err != nil {
		return Observation{}, err
	}

	optional := []struct {
		col string
		dst *NullFloat
	}{
		{ColSleepREM, &obs.SleepREM},
		{ColSleepCycle, &obs.SleepCycle},
		{ColAwake, &obs.Awake},
		{ColBrainWt, &obs.BrainWt},
	}
	for _, o := range optional {
		if *o.dst, err = optionalFloat(o.col, cell(o.col)); err != nil {
			return Observation{}, err
		}
	}

	return obs, nil
}

func isNA(s string) bool {
	return s == "" || strings.EqualFold(s, "NA")
}

func naString(s string) string {
	if isNA(s) {
		return ""
	}

	return s
}

func requiredFloat(col, s string) (float64, error) {
	if isNA(s) {
		return 0, fmt.Errorf("%w: %s is missing", ErrMalformed, col)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformed, col, s)
	}

	return v, nil
}

func optionalFloat(col, s string) (NullFloat, error) {
	if isNA(s) {
		return Missing, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing, fmt.Errorf("%w: %s=%q", ErrMalformed, col, s)
	}

	return Some(v), nil
}
