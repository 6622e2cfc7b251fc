package bayes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/slumber/dataset"
)

func msleepFrame(t *testing.T) *dataset.Frame {
	t.Helper()

	obs, err := dataset.MSleep()
	require.NoError(t, err)
	frame, err := dataset.Prepare(obs)
	require.NoError(t, err)

	return frame
}

func TestDefaultSpec(t *testing.T) {
	spec := DefaultSpec()
	require.NoError(t, spec.Validate())
	assert.Equal(t, []string{InterceptName, dataset.ColLogBrainWt, SigmaName}, spec.ParamNames())
	assert.Equal(t, "normal(0, 3)", spec.Coefficients[0].String())
	assert.Equal(t, "exponential(1, autoscale)", spec.Sigma.String())
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Spec)
		want   error
	}{
		{"response", func(s *Spec) { s.Response = "dreams" }, ErrInvalidSpec},
		{"predictor", func(s *Spec) { s.Predictors = []string{"dreams"} }, ErrInvalidSpec},
		{"prior count", func(s *Spec) { s.Coefficients = s.Coefficients[:1] }, ErrInvalidSpec},
		{"prior scale", func(s *Spec) { s.Coefficients = []Normal{{0, 3}, {0, -1}} }, ErrInvalidPrior},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultSpec()
			tt.mutate(&spec)
			require.ErrorIs(t, spec.Validate(), tt.want)
		})
	}
}

func TestExponential_Resolve(t *testing.T) {
	rate, err := Exponential{Rate: 2}.Resolve([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2.0, rate)

	// sd of {1, 2, 3} is 1.
	rate, err = Exponential{Rate: 1, Autoscale: true}.Resolve([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rate, 1e-12)

	_, err = Exponential{Rate: 1, Autoscale: true}.Resolve([]float64{4, 4, 4})
	require.ErrorIs(t, err, ErrInvalidPrior)
	_, err = Exponential{Rate: 0}.Resolve([]float64{1, 2})
	require.ErrorIs(t, err, ErrInvalidPrior)
}

func TestSpec_Design(t *testing.T) {
	frame := msleepFrame(t)

	x, y, err := DefaultSpec().Design(frame)
	require.NoError(t, err)

	r, c := x.Dims()
	assert.Equal(t, frame.Len(), r)
	assert.Equal(t, 2, c)
	assert.Len(t, y, frame.Len())
	assert.Equal(t, 1.0, x.At(0, 0))
	assert.Equal(t, frame.Row(0).LogBrainWt, x.At(0, 1))
	assert.Equal(t, frame.Row(0).LogitSleepRatio, y[0])
}

func TestFitModel_MSleep(t *testing.T) {
	frame := msleepFrame(t)

	sampler, err := NewGibbsSampler()
	require.NoError(t, err)

	fit, err := FitModel(context.Background(), sampler, DefaultSpec(), frame,
		WithChains(2), WithWarmup(200), WithIterations(400), WithSeed(1234))
	require.NoError(t, err)

	assert.Equal(t, 800, fit.NumDraws())
	assert.Equal(t, 2, fit.Chains.Len())
	assert.Len(t, fit.Diagnostics, 3)
	assert.Equal(t, 1, fit.Index(dataset.ColLogBrainWt))
	assert.Equal(t, -1, fit.Index("dreams"))
	assert.Nil(t, fit.Param("dreams"))

	summary := fit.Summary()
	require.Len(t, summary, 3)
	for _, s := range summary {
		assert.LessOrEqual(t, s.Q2_5, s.Median, s.Name)
		assert.LessOrEqual(t, s.Median, s.Q97_5, s.Name)
		assert.Greater(t, s.SD, 0.0, s.Name)
	}

	// Larger brains sleep less.
	assert.Less(t, summary[1].Q97_5, 0.0)
	assert.Greater(t, summary[2].Q2_5, 0.0)

	coeffs := fit.Coefficients(0)
	require.Len(t, coeffs, 2)
	assert.Equal(t, fit.Draws.At(0, 0), coeffs[0])
	assert.Equal(t, fit.Draws.At(0, 2), fit.Sigma(0))
}

func TestFitModel_CustomSampler(t *testing.T) {
	frame := msleepFrame(t)

	var got Problem
	sampler := SamplerFunc(func(_ context.Context, p Problem) (*Chains, error) {
		got = p
		draws := make([]*mat.Dense, p.Chains)
		for c := range draws {
			d := mat.NewDense(p.Iterations, 3, nil)
			for i := range p.Iterations {
				d.SetRow(i, []float64{float64(c), -0.5, 0.8})
			}
			draws[c] = d
		}

		return &Chains{Draws: draws}, nil
	})

	fit, err := FitModel(context.Background(), sampler, DefaultSpec(), frame,
		WithChains(3), WithWarmup(0), WithIterations(10), WithSeed(7))
	require.NoError(t, err)

	assert.Equal(t, 3, got.Chains)
	assert.Equal(t, uint64(7), got.Seed)
	require.Len(t, got.InitCoefficients, 2)
	assert.Less(t, got.InitCoefficients[1], 0.0)
	assert.Greater(t, got.InitSigma, 0.0)

	// Pooled in chain order.
	assert.Equal(t, 0.0, fit.Draws.At(0, 0))
	assert.Equal(t, 1.0, fit.Draws.At(10, 0))
	assert.Equal(t, 2.0, fit.Draws.At(29, 0))
	assert.NotEmpty(t, fit.Warnings)
}

func TestFitModel_Errors(t *testing.T) {
	frame := msleepFrame(t)

	wrongShape := SamplerFunc(func(_ context.Context, p Problem) (*Chains, error) {
		return &Chains{Draws: []*mat.Dense{mat.NewDense(p.Iterations, 2, nil)}}, nil
	})
	_, err := FitModel(context.Background(), wrongShape, DefaultSpec(), frame, WithIterations(10))
	require.ErrorIs(t, err, ErrInvalidProblem)

	boom := errors.New("boom")
	failing := SamplerFunc(func(context.Context, Problem) (*Chains, error) { return nil, boom })
	_, err = FitModel(context.Background(), failing, DefaultSpec(), frame)
	require.ErrorIs(t, err, boom)

	_, err = FitModel(context.Background(), failing, DefaultSpec(), frame, WithChains(0))
	require.Error(t, err)
	_, err = FitModel(context.Background(), failing, DefaultSpec(), frame, WithInit([]float64{0, 0}, -1))
	require.Error(t, err)
}
