package bayes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/internal/options"
	"github.com/arloliu/slumber/regression"
)

// Sampling defaults.
const (
	DefaultChains     = 4
	DefaultWarmup     = 1000
	DefaultIterations = 1000
	DefaultSeed       = 1234
)

// FitConfig holds the sampling and diagnostic settings of FitModel.
type FitConfig struct {
	Chains        int
	Warmup        int
	Iterations    int
	Seed          uint64
	RHatThreshold float64
	MinESS        float64

	initCoefficients []float64
	initSigma        float64
	logger           *slog.Logger
}

func defaultFitConfig() FitConfig {
	return FitConfig{
		Chains:        DefaultChains,
		Warmup:        DefaultWarmup,
		Iterations:    DefaultIterations,
		Seed:          DefaultSeed,
		RHatThreshold: DefaultRHatThreshold,
		MinESS:        DefaultMinESS,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// FitOption is a functional option for FitModel.
type FitOption = options.Option[*FitConfig]

// WithChains sets the number of chains.
func WithChains(n int) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if n < 1 {
			return fmt.Errorf("bayes: chains must be at least 1, got %d", n)
		}
		cfg.Chains = n

		return nil
	})
}

// WithWarmup sets the number of warmup iterations per chain.
func WithWarmup(n int) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if n < 0 {
			return fmt.Errorf("bayes: warmup must not be negative, got %d", n)
		}
		cfg.Warmup = n

		return nil
	})
}

// WithIterations sets the number of kept draws per chain.
func WithIterations(n int) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if n < 4 {
			return fmt.Errorf("bayes: iterations must be at least 4, got %d", n)
		}
		cfg.Iterations = n

		return nil
	})
}

// WithSeed sets the base seed.
func WithSeed(seed uint64) FitOption {
	return options.NoError(func(cfg *FitConfig) {
		cfg.Seed = seed
	})
}

// WithInit sets the starting coefficients and sigma, replacing the least-squares
// starting point.
func WithInit(coefficients []float64, sigma float64) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if !(sigma > 0) {
			return fmt.Errorf("bayes: initial sigma must be positive, got %v", sigma)
		}
		cfg.initCoefficients = slices.Clone(coefficients)
		cfg.initSigma = sigma

		return nil
	})
}

// WithRHatThreshold sets the largest R-hat accepted without a warning.
func WithRHatThreshold(v float64) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if !(v > 1) {
			return fmt.Errorf("bayes: R-hat threshold must exceed 1, got %v", v)
		}
		cfg.RHatThreshold = v

		return nil
	})
}

// WithMinESS sets the smallest bulk ESS accepted without a warning.
func WithMinESS(v float64) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if v < 0 {
			return fmt.Errorf("bayes: min ESS must not be negative, got %v", v)
		}
		cfg.MinESS = v

		return nil
	})
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) FitOption {
	return options.NoError(func(cfg *FitConfig) {
		if l != nil {
			cfg.logger = l
		}
	})
}

// Fit is a fitted posterior. It is read-only after FitModel returns.
type Fit struct {
	// Spec is the model that was fitted.
	Spec Spec
	// Names are the parameter names in column order, sigma last.
	Names []string
	// Draws holds the pooled posterior, one row per draw in chain order.
	Draws *mat.Dense
	// Chains holds the per-chain draws.
	Chains *Chains
	// SigmaRate is the resolved rate of the sigma prior.
	SigmaRate float64
	// Config records the sampling settings.
	Config FitConfig
	// Diagnostics holds R-hat and ESS per parameter.
	Diagnostics []Diagnostic
	// Warnings lists failed convergence checks.
	Warnings []string
	// Elapsed is the wall time spent sampling.
	Elapsed time.Duration
}

// FitModel draws from the posterior of spec on frame using sampler.
//
// Unless WithInit is given, chains start at the ordinary least-squares fit of the
// response on the first predictor. Convergence problems are reported in
// Fit.Warnings and do not cause an error.
func FitModel(ctx context.Context, sampler Sampler, spec Spec, frame *dataset.Frame, opts ...FitOption) (*Fit, error) {
	cfg := defaultFitConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	x, y, err := spec.Design(frame)
	if err != nil {
		return nil, err
	}

	rate, err := spec.Sigma.Resolve(y)
	if err != nil {
		return nil, err
	}

	problem := Problem{
		X:                x,
		Y:                y,
		Coefficients:     slices.Clone(spec.Coefficients),
		SigmaRate:        rate,
		Chains:           cfg.Chains,
		Warmup:           cfg.Warmup,
		Iterations:       cfg.Iterations,
		Seed:             cfg.Seed,
		InitCoefficients: cfg.initCoefficients,
		InitSigma:        cfg.initSigma,
	}
	if problem.InitCoefficients == nil {
		problem.InitCoefficients, problem.InitSigma = leastSquaresInit(x, y)
	}

	cfg.logger.Debug("sampling posterior",
		"response", spec.Response,
		"predictors", spec.Predictors,
		"observations", len(y),
		"chains", cfg.Chains,
		"warmup", cfg.Warmup,
		"iterations", cfg.Iterations,
		"seed", cfg.Seed,
		"sigma_rate", rate)

	start := time.Now()
	chains, err := sampler.Sample(ctx, problem)
	if err != nil {
		return nil, fmt.Errorf("sample posterior: %w", err)
	}
	elapsed := time.Since(start)

	names := spec.ParamNames()
	if err := chains.validate(len(names)); err != nil {
		return nil, err
	}

	diags := Diagnose(chains, names)
	fit := &Fit{
		Spec:        spec,
		Names:       names,
		Draws:       chains.Pool(),
		Chains:      chains,
		SigmaRate:   rate,
		Config:      cfg,
		Diagnostics: diags,
		Warnings:    Warnings(diags, cfg.RHatThreshold, cfg.MinESS),
		Elapsed:     elapsed,
	}

	cfg.logger.Debug("sampling finished", "draws", fit.NumDraws(), "elapsed", elapsed)

	return fit, nil
}

// leastSquaresInit returns OLS coefficients for the intercept and first
// predictor, zero for any other predictor, and the residual scale.
func leastSquaresInit(x *mat.Dense, y []float64) ([]float64, float64) {
	_, p := x.Dims()
	init := make([]float64, p)
	sigma := stat.StdDev(y, nil)
	if p < 2 {
		init[0] = stat.Mean(y, nil)
		return init, sigma
	}

	m, err := regression.FitLinear(mat.Col(nil, 1, x), y)
	if err != nil || !(m.Sigma > 0) {
		init[0] = stat.Mean(y, nil)
		return init, sigma
	}
	copy(init, m.Coefficients)

	return init, m.Sigma
}

// NumDraws returns the number of pooled draws.
func (f *Fit) NumDraws() int {
	r, _ := f.Draws.Dims()
	return r
}

// Index returns the column of the named parameter, or -1.
func (f *Fit) Index(name string) int {
	return slices.Index(f.Names, name)
}

// Param returns a copy of the pooled draws of the named parameter, or nil.
func (f *Fit) Param(name string) []float64 {
	j := f.Index(name)
	if j < 0 {
		return nil
	}

	return mat.Col(nil, j, f.Draws)
}

// Coefficients returns the coefficient draws of row i (sigma excluded). The
// slice aliases the draws and must not be modified.
func (f *Fit) Coefficients(i int) []float64 {
	row := f.Draws.RawRowView(i)
	return row[:len(row)-1]
}

// Sigma returns the sigma draw of row i.
func (f *Fit) Sigma(i int) float64 {
	_, c := f.Draws.Dims()
	return f.Draws.At(i, c-1)
}

// ParamSummary is one line of the posterior summary table.
type ParamSummary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Q2_5   float64 `json:"q2_5"`
	Median float64 `json:"q50"`
	Q97_5  float64 `json:"q97_5"`
	RHat   float64 `json:"rhat"`
	ESS    float64 `json:"ess"`
}

// String formats the summary line.
func (s ParamSummary) String() string {
	return fmt.Sprintf("%-12s mean=%8.4f sd=%7.4f 2.5%%=%8.4f 50%%=%8.4f 97.5%%=%8.4f rhat=%.3f ess=%.0f",
		s.Name, s.Mean, s.SD, s.Q2_5, s.Median, s.Q97_5, s.RHat, s.ESS)
}

// Summary returns the posterior mean, sd, quantiles and diagnostics of every
// parameter.
func (f *Fit) Summary() []ParamSummary {
	out := make([]ParamSummary, len(f.Names))
	for j, name := range f.Names {
		col := mat.Col(nil, j, f.Draws)
		mean, variance := stat.MeanVariance(col, nil)
		slices.Sort(col)

		s := ParamSummary{
			Name:   name,
			Mean:   mean,
			SD:     math.Sqrt(variance),
			Q2_5:   stat.Quantile(0.025, stat.LinInterp, col, nil),
			Median: stat.Quantile(0.5, stat.LinInterp, col, nil),
			Q97_5:  stat.Quantile(0.975, stat.LinInterp, col, nil),
			RHat:   math.NaN(),
			ESS:    math.NaN(),
		}
		if j < len(f.Diagnostics) {
			s.RHat = f.Diagnostics[j].RHat
			s.ESS = f.Diagnostics[j].ESS
		}
		out[j] = s
	}

	return out
}
