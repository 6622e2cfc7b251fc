package bayes

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/slumber/dataset"
)

// InterceptName is the parameter name of the intercept column.
const InterceptName = "(Intercept)"

// SigmaName is the parameter name of the residual scale.
const SigmaName = "sigma"

var (
	// ErrInvalidPrior is returned for priors with non-positive or non-finite scales.
	ErrInvalidPrior = errors.New("bayes: invalid prior")
	// ErrInvalidSpec is returned when a Spec does not describe a usable model.
	ErrInvalidSpec = errors.New("bayes: invalid model spec")
)

// Normal is a Normal(Mean, Scale) prior on one regression coefficient.
type Normal struct {
	Mean  float64 `yaml:"mean" json:"mean"`
	Scale float64 `yaml:"scale" json:"scale"`
}

// String formats the prior the way it is usually written.
func (n Normal) String() string {
	return fmt.Sprintf("normal(%g, %g)", n.Mean, n.Scale)
}

func (n Normal) validate() error {
	if math.IsNaN(n.Mean) || math.IsInf(n.Mean, 0) || !(n.Scale > 0) || math.IsInf(n.Scale, 0) {
		return fmt.Errorf("%w: %s", ErrInvalidPrior, n)
	}

	return nil
}

// Exponential is an Exponential(Rate) prior on the residual scale.
type Exponential struct {
	Rate float64 `yaml:"rate" json:"rate"`
	// Autoscale divides Rate by the standard deviation of the response.
	Autoscale bool `yaml:"autoscale" json:"autoscale"`
}

// String formats the prior the way it is usually written.
func (e Exponential) String() string {
	if e.Autoscale {
		return fmt.Sprintf("exponential(%g, autoscale)", e.Rate)
	}

	return fmt.Sprintf("exponential(%g)", e.Rate)
}

// Resolve returns the effective rate for a response y.
func (e Exponential) Resolve(y []float64) (float64, error) {
	if !(e.Rate > 0) || math.IsInf(e.Rate, 0) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPrior, e)
	}
	if !e.Autoscale {
		return e.Rate, nil
	}

	sd := stat.StdDev(y, nil)
	if !(sd > 0) {
		return 0, fmt.Errorf("%w: cannot autoscale %s, response has zero spread", ErrInvalidPrior, e)
	}

	return e.Rate / sd, nil
}

// Spec describes the regression: which frame columns are used and the priors.
type Spec struct {
	// Response is the frame column modelled as y.
	Response string
	// Predictors are the frame columns of the design matrix, after the intercept.
	Predictors []string
	// Coefficients holds one prior per coefficient, intercept first.
	Coefficients []Normal
	// Sigma is the prior on the residual scale.
	Sigma Exponential
}

// DefaultSpec regresses logit(sleep_total/24) on log10(brainwt) with Normal(0, 3)
// priors on both coefficients and an autoscaled Exponential(1) prior on sigma.
func DefaultSpec() Spec {
	return Spec{
		Response:     dataset.ColLogitSleepRatio,
		Predictors:   []string{dataset.ColLogBrainWt},
		Coefficients: []Normal{{Mean: 0, Scale: 3}, {Mean: 0, Scale: 3}},
		Sigma:        Exponential{Rate: 1, Autoscale: true},
	}
}

// Validate checks that the spec names known columns and carries one valid prior
// per coefficient.
func (s Spec) Validate() error {
	if !dataset.HasColumn(s.Response) {
		return fmt.Errorf("%w: unknown response %q", ErrInvalidSpec, s.Response)
	}
	for _, p := range s.Predictors {
		if !dataset.HasColumn(p) {
			return fmt.Errorf("%w: unknown predictor %q", ErrInvalidSpec, p)
		}
	}
	if len(s.Coefficients) != len(s.Predictors)+1 {
		return fmt.Errorf("%w: %d coefficient priors for %d coefficients",
			ErrInvalidSpec, len(s.Coefficients), len(s.Predictors)+1)
	}
	for _, c := range s.Coefficients {
		if err := c.validate(); err != nil {
			return err
		}
	}

	return nil
}

// ParamNames returns the parameter names in draw column order.
func (s Spec) ParamNames() []string {
	names := make([]string, 0, len(s.Predictors)+2)
	names = append(names, InterceptName)
	names = append(names, s.Predictors...)

	return append(names, SigmaName)
}

// Design builds the design matrix (intercept column first) and the response.
func (s Spec) Design(frame *dataset.Frame) (*mat.Dense, []float64, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	n := frame.Len()
	p := len(s.Predictors) + 1
	x := mat.NewDense(n, p, nil)
	for i := range n {
		x.Set(i, 0, 1)
	}
	for j, name := range s.Predictors {
		for i, v := range frame.Column(name) {
			x.Set(i, j+1, v)
		}
	}

	return x, frame.Column(s.Response), nil
}
