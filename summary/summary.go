// Package summary reduces prediction draws to per-grid-point quantile bands.
package summary

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/slumber/internal/pool"
)

// ErrInvalidProbs is returned for probabilities outside [0, 1] or out of order.
var ErrInvalidProbs = errors.New("summary: invalid probabilities")

// Probs are the lower, median and upper probabilities of a band.
type Probs struct {
	Lower  float64 `yaml:"lower" json:"lower"`
	Median float64 `yaml:"median" json:"median"`
	Upper  float64 `yaml:"upper" json:"upper"`
}

// DefaultProbs are the 2.5%, 50% and 99.5% quantiles.
var DefaultProbs = Probs{Lower: 0.025, Median: 0.5, Upper: 0.995}

// Validate checks 0 <= Lower <= Median <= Upper <= 1.
func (p Probs) Validate() error {
	if !(p.Lower >= 0 && p.Lower <= p.Median && p.Median <= p.Upper && p.Upper <= 1) {
		return fmt.Errorf("%w: %v, %v, %v", ErrInvalidProbs, p.Lower, p.Median, p.Upper)
	}

	return nil
}

// Band is the quantile summary at one grid point.
type Band struct {
	X      float64 `json:"x"`
	Lower  float64 `json:"lower"`
	Median float64 `json:"median"`
	Upper  float64 `json:"upper"`
}

// Quantiles summarises every column of draws. Column j belongs to grid[j].
// NaN draws are ignored; a column without any finite draw gives NaN bounds.
//
// Quantiles interpolate the empirical CDF (gonum stat.LinInterp, Hyndman and
// Fan definition 4) rather than using definition 7. Both agree to well below
// the Monte Carlo error at the thousands of draws a fit produces.
func Quantiles(draws mat.Matrix, grid []float64, probs Probs) ([]Band, error) {
	if err := probs.Validate(); err != nil {
		return nil, err
	}

	r, c := draws.Dims()
	if c != len(grid) {
		return nil, fmt.Errorf("summary: %d draw columns for %d grid points", c, len(grid))
	}

	col, cleanup := pool.GetFloat64Slice(r)
	defer cleanup()

	bands := make([]Band, c)
	ps := []float64{probs.Lower, probs.Median, probs.Upper}
	for j := range c {
		col = col[:0]
		for i := range r {
			if v := draws.At(i, j); !math.IsNaN(v) {
				col = append(col, v)
			}
		}

		q := quantilesSorted(col, ps)
		bands[j] = Band{X: grid[j], Lower: q[0], Median: q[1], Upper: q[2]}
	}

	return bands, nil
}

// Quantile returns the quantiles ps of values, ignoring NaN. values is not
// modified.
func Quantile(values []float64, ps ...float64) []float64 {
	buf, cleanup := pool.GetFloat64Slice(len(values))
	defer cleanup()

	buf = buf[:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			buf = append(buf, v)
		}
	}

	return quantilesSorted(buf, ps)
}

// quantilesSorted sorts x in place and evaluates the empirical quantiles.
func quantilesSorted(x []float64, ps []float64) []float64 {
	out := make([]float64, len(ps))
	if len(x) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}

		return out
	}

	slices.Sort(x)
	for i, p := range ps {
		out[i] = stat.Quantile(p, stat.LinInterp, x, nil)
	}

	return out
}
