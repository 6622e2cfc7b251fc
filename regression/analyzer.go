package regression

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/internal/options"
	"github.com/arloliu/slumber/transform"
)

var (
	// ErrTooFewPoints is returned when fewer than three observations are given.
	ErrTooFewPoints = errors.New("regression: at least 3 observations are required")
	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New("regression: x and y lengths differ")
	// ErrConstantPredictor is returned when every x value is equal.
	ErrConstantPredictor = errors.New("regression: predictor has zero variance")
)

// FitLinear fits y = a + b * x by ordinary least squares.
//
// The returned model reports R² and RMSE on the scale of y and carries a
// LinearEstimator. Coefficient standard errors use the residual variance with
// n-2 degrees of freedom.
func FitLinear(x, y []float64) (*Model, error) {
	a, b, se, sigma, err := leastSquares(x, y)
	if err != nil {
		return nil, err
	}

	predicted := make([]float64, len(x))
	for i := range x {
		predicted[i] = a + b*x[i]
	}

	return &Model{
		Type:         ModelTypeLinear,
		Coefficients: []float64{a, b},
		StdErrors:    se,
		Sigma:        sigma,
		N:            len(x),
		RSquared:     calculateRSquared(y, predicted),
		RMSE:         calculateRMSE(y, predicted),
		Formula:      fmt.Sprintf("sleep = %.3f + %.3f * x", a, b),
		Estimator:    NewLinearEstimator(a, b),
	}, nil
}

// FitLogit fits logit(hours / 24) = a + b * x by ordinary least squares.
//
// Every hours value must lie in (0, 24). R² and RMSE are computed on the hours
// scale after back-transforming the fitted values; Sigma and StdErrors stay on
// the logit scale.
func FitLogit(x, hours []float64) (*Model, error) {
	y := make([]float64, len(hours))
	for i, h := range hours {
		if !(h > 0 && h < transform.HoursPerDay) {
			return nil, fmt.Errorf("regression: sleep total %v at index %d is outside (0, 24)", h, i)
		}
		y[i] = transform.LogitSleepRatio(h)
	}

	a, b, se, sigma, err := leastSquares(x, y)
	if err != nil {
		return nil, err
	}

	est := NewLogitEstimator(a, b)
	predicted := make([]float64, len(x))
	for i := range x {
		predicted[i] = est.Estimate(x[i])
	}

	return &Model{
		Type:         ModelTypeLogit,
		Coefficients: []float64{a, b},
		StdErrors:    se,
		Sigma:        sigma,
		N:            len(x),
		RSquared:     calculateRSquared(hours, predicted),
		RMSE:         calculateRMSE(hours, predicted),
		Formula:      fmt.Sprintf("logit(sleep / 24) = %.3f + %.3f * x", a, b),
		Estimator:    est,
	}, nil
}

// Compare fits both baselines to the frame and ranks them by R² on the hours scale.
func Compare(frame *dataset.Frame, opts ...CompareOption) (*Result, error) {
	cfg := defaultCompareConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	x := frame.Column(cfg.Predictor)
	hours := frame.Column(cfg.Hours)

	linear, err := FitLinear(x, hours)
	if err != nil {
		return nil, fmt.Errorf("fit linear baseline: %w", err)
	}

	logit, err := FitLogit(x, hours)
	if err != nil {
		return nil, fmt.Errorf("fit logit baseline: %w", err)
	}

	models := []*Model{linear, logit}
	slices.SortStableFunc(models, func(m1, m2 *Model) int {
		switch {
		case m1.RSquared > m2.RSquared:
			return -1
		case m1.RSquared < m2.RSquared:
			return 1
		default:
			return 0
		}
	})

	return &Result{
		BestFit:   models[0],
		AllModels: models,
		Predictor: cfg.Predictor,
		Response:  cfg.Hours,
	}, nil
}

// Naive fits the untransformed hours model sleep_total ~ log10(brainwt).
func Naive(frame *dataset.Frame) (*Model, error) {
	return FitLinear(frame.Column(dataset.ColLogBrainWt), frame.Column(dataset.ColSleepTotal))
}

// OutOfRange counts the predictions of est at xs that fall outside the open
// interval (0, 24) hours.
func OutOfRange(est Estimator, xs []float64) int {
	count := 0
	for _, x := range xs {
		h := est.Estimate(x)
		if !(h > 0 && h < transform.HoursPerDay) {
			count++
		}
	}

	return count
}

func leastSquares(x, y []float64) (a, b float64, se []float64, sigma float64, err error) {
	n := len(x)
	if n != len(y) {
		return 0, 0, nil, 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, n, len(y))
	}
	if n < 3 {
		return 0, 0, nil, 0, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}

	meanX := stat.Mean(x, nil)
	meanY := stat.Mean(y, nil)

	var sxx, sxy float64
	for i := range n {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}
	if sxx == 0 {
		return 0, 0, nil, 0, ErrConstantPredictor
	}

	b = sxy / sxx
	a = meanY - b*meanX

	var ssr float64
	for i := range n {
		r := y[i] - (a + b*x[i])
		ssr += r * r
	}

	s2 := ssr / float64(n-2)
	sigma = math.Sqrt(s2)
	seB := math.Sqrt(s2 / sxx)
	seA := math.Sqrt(s2 * (1/float64(n) + meanX*meanX/sxx))

	return a, b, []float64{seA, seB}, sigma, nil
}

func calculateRSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	mean := stat.Mean(observed, nil)
	ssTot := 0.0 // Total sum of squares
	ssRes := 0.0 // Residual sum of squares

	for i := range observed {
		ssTot += (observed[i] - mean) * (observed[i] - mean)
		ssRes += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
	}

	if ssTot == 0 {
		return 0
	}

	return 1.0 - (ssRes / ssTot)
}

func calculateRMSE(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	sumSq := 0.0
	for i := range observed {
		diff := observed[i] - predicted[i]
		sumSq += diff * diff
	}

	return math.Sqrt(sumSq / float64(len(observed)))
}
