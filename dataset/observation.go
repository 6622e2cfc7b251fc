package dataset

import (
	"errors"
	"strconv"
)

// Raw column names.
const (
	ColName         = "name"
	ColGenus        = "genus"
	ColVore         = "vore"
	ColOrder        = "order"
	ColConservation = "conservation"
	ColSleepTotal   = "sleep_total"
	ColSleepREM     = "sleep_rem"
	ColSleepCycle   = "sleep_cycle"
	ColAwake        = "awake"
	ColBrainWt      = "brainwt"
	ColBodyWt       = "bodywt"
)

// Derived column names available on a Frame.
const (
	ColLogBrainWt      = "log_brainwt"
	ColLogBodyWt       = "log_bodywt"
	ColLogSleepTotal   = "log_sleep_total"
	ColSleepRatio      = "sleep_ratio"
	ColLogitSleepRatio = "logit_sleep_ratio"
)

// RequiredColumns must be present in any input table.
var RequiredColumns = []string{ColName, ColSleepTotal, ColBrainWt, ColBodyWt}

var (
	// ErrMissingColumn is returned when a required column is absent from the input header.
	ErrMissingColumn = errors.New("dataset: required column missing")
	// ErrMalformed is returned for unparsable numbers or missing required values.
	ErrMalformed = errors.New("dataset: malformed value")
	// ErrEmptyFrame is returned when no observation survives preparation.
	ErrEmptyFrame = errors.New("dataset: no observations left after filtering")
	// ErrUnknownColumn is returned when a Frame column lookup names no known column.
	ErrUnknownColumn = errors.New("dataset: unknown column")
)

// NullFloat is a float64 that may be missing.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some returns a present value.
func Some(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Missing is the absent value.
var Missing = NullFloat{}

// Or returns the value, or def when it is missing.
func (n NullFloat) Or(def float64) float64 {
	if !n.Valid {
		return def
	}

	return n.Float64
}

// String renders the value, or "NA" when missing.
func (n NullFloat) String() string {
	if !n.Valid {
		return "NA"
	}

	return strconv.FormatFloat(n.Float64, 'g', -1, 64)
}

// Observation is one species record as read from the source table.
// Masses are in kilograms, durations in hours.
type Observation struct {
	Name         string
	Genus        string
	Vore         string
	Order        string
	Conservation string
	SleepTotal   float64
	SleepREM     NullFloat
	SleepCycle   NullFloat
	Awake        NullFloat
	BrainWt      NullFloat
	BodyWt       float64
}
