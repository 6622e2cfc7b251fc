package predict

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/arloliu/slumber/dataset"
)

// DefaultGridSize is the number of points of the prediction grid.
const DefaultGridSize = 80

// ErrInvalidGrid is returned for empty, reversed or non-finite grid bounds.
var ErrInvalidGrid = errors.New("predict: invalid grid")

// Grid is an evenly spaced, strictly increasing sequence of predictor values.
type Grid struct {
	values []float64
}

// NewGrid returns n evenly spaced values from lo to hi. The endpoints are exact.
func NewGrid(lo, hi float64, n int) (*Grid, error) {
	switch {
	case n < 2:
		return nil, fmt.Errorf("%w: %d points", ErrInvalidGrid, n)
	case math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0):
		return nil, fmt.Errorf("%w: bounds [%v, %v] are not finite", ErrInvalidGrid, lo, hi)
	case !(lo < hi):
		return nil, fmt.Errorf("%w: lower bound %v is not below upper bound %v", ErrInvalidGrid, lo, hi)
	}

	values := floats.Span(make([]float64, n), lo, hi)
	values[0], values[n-1] = lo, hi

	return &Grid{values: values}, nil
}

// GridFor spans the observed range of log10 brain mass in frame with n points.
func GridFor(frame *dataset.Frame, n int) (*Grid, error) {
	lo, hi, err := frame.Range(dataset.ColLogBrainWt)
	if err != nil {
		return nil, err
	}

	return NewGrid(lo, hi, n)
}

// Len returns the number of grid points.
func (g *Grid) Len() int {
	return len(g.values)
}

// At returns grid point i.
func (g *Grid) At(i int) float64 {
	return g.values[i]
}

// Values returns a copy of the grid points.
func (g *Grid) Values() []float64 {
	return slices.Clone(g.values)
}

// Min returns the first grid point.
func (g *Grid) Min() float64 {
	return g.values[0]
}

// Max returns the last grid point.
func (g *Grid) Max() float64 {
	return g.values[len(g.values)-1]
}
