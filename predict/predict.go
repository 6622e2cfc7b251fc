package predict

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/slumber/bayes"
	"github.com/arloliu/slumber/transform"
)

// DefaultTrendDraws is the number of posterior lines drawn on the trend plot.
const DefaultTrendDraws = 400

// Draws is a draws × grid-points matrix of predictions in hours.
type Draws struct {
	// Grid is the grid the columns correspond to.
	Grid *Grid
	// Values holds one row per posterior draw and one column per grid point.
	Values *mat.Dense
}

// NumDraws returns the number of rows.
func (d *Draws) NumDraws() int {
	r, _ := d.Values.Dims()
	return r
}

// Row returns a copy of the predictions of draw i.
func (d *Draws) Row(i int) []float64 {
	return mat.Row(nil, i, d.Values)
}

// Column returns a copy of the predictions at grid point j.
func (d *Draws) Column(j int) []float64 {
	return mat.Col(nil, j, d.Values)
}

// Linear evaluates intercept + slope·x for every draw and grid point and maps
// the result to hours. Observation noise is not included.
func Linear(fit *bayes.Fit, grid *Grid) (*Draws, error) {
	return evaluate(fit, grid, nil)
}

// Predictive is Linear plus a Normal(0, sigma) noise draw per cell, taken from
// rng, before mapping to hours.
func Predictive(fit *bayes.Fit, grid *Grid, rng *rand.Rand) (*Draws, error) {
	if rng == nil {
		return nil, fmt.Errorf("predict: nil random source")
	}

	return evaluate(fit, grid, rng)
}

func evaluate(fit *bayes.Fit, grid *Grid, rng *rand.Rand) (*Draws, error) {
	if len(fit.Names) != 3 {
		return nil, fmt.Errorf("predict: model has %d parameters, want intercept, slope and sigma", len(fit.Names))
	}

	n := fit.NumDraws()
	out := mat.NewDense(n, grid.Len(), nil)
	for i := range n {
		beta := fit.Coefficients(i)
		sigma := fit.Sigma(i)
		row := out.RawRowView(i)
		for j, x := range grid.values {
			eta := beta[0] + beta[1]*x
			if rng != nil {
				eta += sigma * rng.NormFloat64()
			}
			row[j] = transform.ToHours(eta)
		}
	}

	return &Draws{Grid: grid, Values: out}, nil
}

// SampleRows returns at most k rows of d chosen without replacement, in their
// original order. All rows are returned when k >= d.NumDraws().
func SampleRows(d *Draws, k int, rng *rand.Rand) (*Draws, error) {
	if k < 1 {
		return nil, fmt.Errorf("predict: sample size must be positive, got %d", k)
	}

	n := d.NumDraws()
	if k >= n {
		return &Draws{Grid: d.Grid, Values: mat.DenseCopyOf(d.Values)}, nil
	}

	idx := rng.Perm(n)[:k]
	slices.Sort(idx)

	_, c := d.Values.Dims()
	out := mat.NewDense(k, c, nil)
	for i, src := range idx {
		out.SetRow(i, d.Values.RawRowView(src))
	}

	return &Draws{Grid: d.Grid, Values: out}, nil
}
