package bayes

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidProblem is returned by samplers for inconsistent inputs.
var ErrInvalidProblem = errors.New("bayes: invalid sampling problem")

// Problem is everything a Sampler needs to draw from the posterior.
type Problem struct {
	// X is the n × p design matrix, intercept column first.
	X *mat.Dense
	// Y is the response, length n.
	Y []float64
	// Coefficients holds one Normal prior per column of X.
	Coefficients []Normal
	// SigmaRate is the resolved rate of the Exponential prior on sigma.
	SigmaRate float64

	// Chains is the number of independent chains.
	Chains int
	// Warmup is the number of discarded iterations per chain.
	Warmup int
	// Iterations is the number of kept draws per chain.
	Iterations int
	// Seed is the base seed every chain stream is derived from.
	Seed uint64

	// InitCoefficients and InitSigma are optional starting values. Samplers
	// may perturb them per chain.
	InitCoefficients []float64
	InitSigma        float64
}

// NumParams returns the number of sampled parameters (coefficients plus sigma).
func (p *Problem) NumParams() int {
	_, c := p.X.Dims()
	return c + 1
}

// Validate checks the dimensions and settings of the problem.
func (p *Problem) Validate() error {
	if p.X == nil {
		return fmt.Errorf("%w: nil design matrix", ErrInvalidProblem)
	}

	n, c := p.X.Dims()
	switch {
	case n != len(p.Y):
		return fmt.Errorf("%w: %d design rows for %d responses", ErrInvalidProblem, n, len(p.Y))
	case n < 2:
		return fmt.Errorf("%w: %d observations", ErrInvalidProblem, n)
	case len(p.Coefficients) != c:
		return fmt.Errorf("%w: %d priors for %d coefficients", ErrInvalidProblem, len(p.Coefficients), c)
	case !(p.SigmaRate > 0):
		return fmt.Errorf("%w: sigma rate %v", ErrInvalidProblem, p.SigmaRate)
	case p.Chains < 1:
		return fmt.Errorf("%w: %d chains", ErrInvalidProblem, p.Chains)
	case p.Warmup < 0:
		return fmt.Errorf("%w: %d warmup iterations", ErrInvalidProblem, p.Warmup)
	case p.Iterations < 4:
		return fmt.Errorf("%w: %d iterations", ErrInvalidProblem, p.Iterations)
	case p.InitCoefficients != nil && len(p.InitCoefficients) != c:
		return fmt.Errorf("%w: %d initial coefficients for %d", ErrInvalidProblem, len(p.InitCoefficients), c)
	}

	for _, prior := range p.Coefficients {
		if err := prior.validate(); err != nil {
			return err
		}
	}

	return nil
}

// Chains holds the kept draws of every chain. Each matrix has one row per
// iteration and one column per parameter, sigma last.
type Chains struct {
	Draws []*mat.Dense
}

// Len returns the number of chains.
func (c *Chains) Len() int {
	return len(c.Draws)
}

// Iterations returns the number of draws per chain.
func (c *Chains) Iterations() int {
	if len(c.Draws) == 0 {
		return 0
	}
	r, _ := c.Draws[0].Dims()

	return r
}

// Param returns the draws of parameter j for every chain.
func (c *Chains) Param(j int) [][]float64 {
	out := make([][]float64, len(c.Draws))
	for i, d := range c.Draws {
		out[i] = mat.Col(nil, j, d)
	}

	return out
}

// Pool stacks the chains in chain order into one draws × parameters matrix.
func (c *Chains) Pool() *mat.Dense {
	if len(c.Draws) == 0 {
		return nil
	}

	pooled := c.Draws[0]
	for _, d := range c.Draws[1:] {
		next := &mat.Dense{}
		next.Stack(pooled, d)
		pooled = next
	}
	if len(c.Draws) == 1 {
		return mat.DenseCopyOf(pooled)
	}

	return pooled
}

func (c *Chains) validate(params int) error {
	if len(c.Draws) == 0 {
		return fmt.Errorf("%w: sampler returned no chains", ErrInvalidProblem)
	}

	rows := -1
	for i, d := range c.Draws {
		r, cols := d.Dims()
		if cols != params {
			return fmt.Errorf("%w: chain %d has %d parameters, want %d", ErrInvalidProblem, i, cols, params)
		}
		if rows >= 0 && r != rows {
			return fmt.Errorf("%w: chain %d has %d draws, want %d", ErrInvalidProblem, i, r, rows)
		}
		rows = r
	}

	return nil
}

// Sampler draws from the posterior of a Problem.
type Sampler interface {
	Sample(ctx context.Context, p Problem) (*Chains, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context, p Problem) (*Chains, error)

// Sample calls f.
func (f SamplerFunc) Sample(ctx context.Context, p Problem) (*Chains, error) {
	return f(ctx, p)
}
