package predict

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/slumber/bayes"
	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/transform"
)

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(-3.853871964321762, 0.7567881055242818, DefaultGridSize)
	require.NoError(t, err)
	require.Equal(t, 80, g.Len())

	assert.Equal(t, -3.853871964321762, g.Min())
	assert.Equal(t, 0.7567881055242818, g.Max())
	for i := 1; i < g.Len(); i++ {
		assert.Greater(t, g.At(i), g.At(i-1))
	}

	step := (g.Max() - g.Min()) / 79
	assert.InDelta(t, g.Min()+step, g.At(1), 1e-12)
}

func TestNewGrid_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
		n      int
	}{
		{"one point", 0, 1, 1},
		{"reversed", 1, 0, 10},
		{"equal", 1, 1, 10},
		{"nan", math.NaN(), 1, 10},
		{"inf", 0, math.Inf(1), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.lo, tt.hi, tt.n)
			require.ErrorIs(t, err, ErrInvalidGrid)
		})
	}
}

func TestGridFor_MSleep(t *testing.T) {
	obs, err := dataset.MSleep()
	require.NoError(t, err)
	frame, err := dataset.Prepare(obs)
	require.NoError(t, err)

	g, err := GridFor(frame, DefaultGridSize)
	require.NoError(t, err)

	lo, hi, err := frame.Range(dataset.ColLogBrainWt)
	require.NoError(t, err)
	assert.Equal(t, lo, g.Min())
	assert.Equal(t, hi, g.Max())
	assert.Equal(t, transform.Log10(0.00014), g.Min())
	assert.Equal(t, transform.Log10(5.712), g.Max())

	vals := g.Values()
	vals[0] = 99
	assert.NotEqual(t, 99.0, g.Min())
}

// fixedFit builds a fit whose draws are the given rows of intercept, slope, sigma.
func fixedFit(t *testing.T, rows ...[]float64) *bayes.Fit {
	t.Helper()

	draws := make([]*mat.Dense, 1)
	draws[0] = mat.NewDense(len(rows), 3, nil)
	for i, r := range rows {
		draws[0].SetRow(i, r)
	}
	sampler := bayes.SamplerFunc(func(context.Context, bayes.Problem) (*bayes.Chains, error) {
		return &bayes.Chains{Draws: draws}, nil
	})

	obs, err := dataset.MSleep()
	require.NoError(t, err)
	frame, err := dataset.Prepare(obs)
	require.NoError(t, err)

	fit, err := bayes.FitModel(context.Background(), sampler, bayes.DefaultSpec(), frame,
		bayes.WithChains(1), bayes.WithWarmup(0), bayes.WithIterations(len(rows)))
	require.NoError(t, err)

	return fit
}

func TestLinear(t *testing.T) {
	fit := fixedFit(t,
		[]float64{0, 0, 1},
		[]float64{0, 1, 1},
		[]float64{-1, -0.5, 1},
		[]float64{2, 0, 1},
	)
	grid, err := NewGrid(-2, 2, 5)
	require.NoError(t, err)

	lin, err := Linear(fit, grid)
	require.NoError(t, err)
	require.Equal(t, 4, lin.NumDraws())

	for _, v := range lin.Row(0) {
		assert.Equal(t, 12.0, v)
	}
	assert.Equal(t, 12.0, lin.Row(1)[2])
	assert.InDelta(t, transform.ToHours(1), lin.Row(1)[3], 1e-12)
	assert.InDelta(t, transform.ToHours(-1-0.5*-2), lin.Column(0)[2], 1e-12)
	assert.Same(t, grid, lin.Grid)
}

func TestPredictions_StayInsideDay(t *testing.T) {
	fit := fixedFit(t,
		[]float64{1e308, 1e308, 1},
		[]float64{-1e308, 1e308, 1},
		[]float64{0, 0, 1e300},
		[]float64{40, -40, 0.1},
		[]float64{-0.9, -0.3, 0.6},
	)
	grid, err := NewGrid(-4, 1, DefaultGridSize)
	require.NoError(t, err)

	lin, err := Linear(fit, grid)
	require.NoError(t, err)
	pred, err := Predictive(fit, grid, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	for _, d := range []*Draws{lin, pred} {
		r, c := d.Values.Dims()
		for i := range r {
			for j := range c {
				v := d.Values.At(i, j)
				if math.IsNaN(v) {
					continue
				}
				require.Greater(t, v, 0.0)
				require.Less(t, v, 24.0)
			}
		}
	}
}

func TestPredictive_AddsNoise(t *testing.T) {
	rows := make([][]float64, 2000)
	for i := range rows {
		rows[i] = []float64{0, 0, 0.5}
	}
	fit := fixedFit(t, rows...)
	grid, err := NewGrid(0, 1, 2)
	require.NoError(t, err)

	lin, err := Linear(fit, grid)
	require.NoError(t, err)
	pred, err := Predictive(fit, grid, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)

	col := pred.Column(0)
	var spread float64
	for _, v := range col {
		spread += math.Abs(v - 12)
	}
	assert.Greater(t, spread/float64(len(col)), 1.0)
	assert.Equal(t, 12.0, lin.Column(0)[0])

	_, err = Predictive(fit, grid, nil)
	require.Error(t, err)
}

func TestSampleRows(t *testing.T) {
	values := mat.NewDense(10, 2, nil)
	for i := range 10 {
		values.SetRow(i, []float64{float64(i), float64(i)})
	}
	d := &Draws{Values: values}
	rng := rand.New(rand.NewPCG(9, 9))

	sub, err := SampleRows(d, 4, rng)
	require.NoError(t, err)
	require.Equal(t, 4, sub.NumDraws())

	seen := map[float64]bool{}
	for i := range 4 {
		v := sub.Values.At(i, 0)
		assert.False(t, seen[v], "row %v sampled twice", v)
		seen[v] = true
		if i > 0 {
			assert.Greater(t, v, sub.Values.At(i-1, 0))
		}
	}

	all, err := SampleRows(d, 400, rng)
	require.NoError(t, err)
	assert.True(t, mat.Equal(values, all.Values))

	_, err = SampleRows(d, 0, rng)
	require.Error(t, err)
}
