package dataset

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/slumber/internal/hash"
	"github.com/arloliu/slumber/internal/options"
	"github.com/arloliu/slumber/transform"
)

// Row is a retained observation together with its derived columns.
type Row struct {
	Observation

	// LogBrainWt is log10(brainwt in kg).
	LogBrainWt float64
	// LogBodyWt is log10(bodywt in kg).
	LogBodyWt float64
	// LogSleepTotal is log10(sleep_total in hours).
	LogSleepTotal float64
	// SleepRatio is sleep_total / 24.
	SleepRatio float64
	// LogitSleepRatio is log(p / (1-p)) with p = SleepRatio.
	LogitSleepRatio float64
}

// PrepareReport summarises what Prepare kept and why it dropped the rest.
type PrepareReport struct {
	// Input is the number of observations given to Prepare.
	Input int
	// Retained is the number of rows in the frame.
	Retained int
	// MissingBrainWt counts rows dropped for a missing brain mass.
	MissingBrainWt int
	// Degenerate counts rows excluded because a log or logit would be undefined.
	Degenerate int
	// Warnings describes every degenerate exclusion.
	Warnings []string
}

// Frame is the prepared, immutable model input.
type Frame struct {
	rows   []Row
	report PrepareReport
}

type prepareConfig struct {
	keep func(Observation) bool
}

// PrepareOption configures Prepare.
type PrepareOption = options.Option[*prepareConfig]

// WithFilter keeps only observations for which keep returns true. It is applied
// before the missing brain mass filter and its rejections are not counted.
func WithFilter(keep func(Observation) bool) PrepareOption {
	return options.New(func(c *prepareConfig) error {
		if keep == nil {
			return fmt.Errorf("dataset: nil filter")
		}
		c.keep = keep

		return nil
	})
}

// Prepare filters observations and computes derived columns.
//
// Observations with a missing brain mass are dropped silently. Observations with
// a non-positive mass or a sleep total outside (0, 24) hours are excluded with a
// report warning. ErrEmptyFrame is returned when nothing is left.
func Prepare(obs []Observation, opts ...PrepareOption) (*Frame, error) {
	cfg := &prepareConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	report := PrepareReport{}
	rows := make([]Row, 0, len(obs))
	for _, o := range obs {
		if cfg.keep != nil && !cfg.keep(o) {
			continue
		}
		report.Input++

		if !o.BrainWt.Valid {
			report.MissingBrainWt++
			continue
		}

		if reason := degenerate(o); reason != "" {
			report.Degenerate++
			report.Warnings = append(report.Warnings, fmt.Sprintf("excluded %q: %s", o.Name, reason))

			continue
		}

		rows = append(rows, derive(o))
	}
	report.Retained = len(rows)

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w (input %d, missing brainwt %d, degenerate %d)",
			ErrEmptyFrame, report.Input, report.MissingBrainWt, report.Degenerate)
	}

	return &Frame{rows: rows, report: report}, nil
}

func degenerate(o Observation) string {
	switch {
	case !(o.BrainWt.Float64 > 0) || math.IsInf(o.BrainWt.Float64, 0):
		return fmt.Sprintf("brainwt %v is not a positive finite mass", o.BrainWt.Float64)
	case !(o.BodyWt > 0) || math.IsInf(o.BodyWt, 0):
		return fmt.Sprintf("bodywt %v is not a positive finite mass", o.BodyWt)
	case !(o.SleepTotal > 0 && o.SleepTotal < transform.HoursPerDay):
		return fmt.Sprintf("sleep_total %v is outside (0, 24) hours", o.SleepTotal)
	default:
		return ""
	}
}

func derive(o Observation) Row {
	return Row{
		Observation:     o,
		LogBrainWt:      transform.Log10(o.BrainWt.Float64),
		LogBodyWt:       transform.Log10(o.BodyWt),
		LogSleepTotal:   transform.Log10(o.SleepTotal),
		SleepRatio:      transform.SleepRatio(o.SleepTotal),
		LogitSleepRatio: transform.LogitSleepRatio(o.SleepTotal),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Row returns row i.
func (f *Frame) Row(i int) Row {
	return f.rows[i]
}

// Rows returns a copy of all rows in input order.
func (f *Frame) Rows() []Row {
	return slices.Clone(f.rows)
}

// Report returns the preparation summary.
func (f *Frame) Report() PrepareReport {
	r := f.report
	r.Warnings = slices.Clone(f.report.Warnings)

	return r
}

var columnGetters = map[string]func(Row) float64{
	ColSleepTotal:      func(r Row) float64 { return r.SleepTotal },
	ColBrainWt:         func(r Row) float64 { return r.BrainWt.Float64 },
	ColBodyWt:          func(r Row) float64 { return r.BodyWt },
	ColLogBrainWt:      func(r Row) float64 { return r.LogBrainWt },
	ColLogBodyWt:       func(r Row) float64 { return r.LogBodyWt },
	ColLogSleepTotal:   func(r Row) float64 { return r.LogSleepTotal },
	ColSleepRatio:      func(r Row) float64 { return r.SleepRatio },
	ColLogitSleepRatio: func(r Row) float64 { return r.LogitSleepRatio },
}

// HasColumn reports whether name is a numeric column of the frame.
func HasColumn(name string) bool {
	_, ok := columnGetters[name]
	return ok
}

// Column returns a fresh slice with the named numeric column, or nil if the name
// is unknown (see HasColumn).
func (f *Frame) Column(name string) []float64 {
	get, ok := columnGetters[name]
	if !ok {
		return nil
	}

	out := make([]float64, len(f.rows))
	for i, r := range f.rows {
		out[i] = get(r)
	}

	return out
}

// Range returns the minimum and maximum of the named column.
func (f *Frame) Range(name string) (lo, hi float64, err error) {
	col := f.Column(name)
	if col == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}

	return slices.Min(col), slices.Max(col), nil
}

// Select returns the rows whose names match names, in the order given, plus the
// names that matched no row.
func (f *Frame) Select(names ...string) (rows []Row, unknown []string) {
	byID := make(map[uint64]int, len(f.rows))
	for i, r := range f.rows {
		byID[hash.ID(r.Name)] = i
	}

	for _, n := range names {
		if i, ok := byID[hash.ID(n)]; ok && f.rows[i].Name == n {
			rows = append(rows, f.rows[i])
		} else {
			unknown = append(unknown, n)
		}
	}

	return rows, unknown
}

// Fingerprint returns a content hash of the retained rows, stable across runs.
func (f *Frame) Fingerprint() uint64 {
	fp := hash.NewFingerprint()
	for _, r := range f.rows {
		fp.String(r.Name)
		fp.Float(r.SleepTotal)
		fp.Float(r.BrainWt.Float64)
		fp.Float(r.BodyWt)
	}

	return fp.Sum64()
}
