// Package slumber models how long mammals sleep as a function of brain mass.
//
// The analysis regresses the logit of the fraction of the day spent asleep on
// log10 brain mass with a Bayesian linear model, then maps posterior predictions
// back to hours with 24·sigmoid so they can never leave the 0 to 24 hour range.
// An untransformed least-squares line is fitted alongside to show why the
// transform is needed.
//
// # Core Features
//
//   - Built-in msleep table (83 species) or any CSV with the same columns
//   - Pluggable posterior sampler; the default Gibbs sampler runs chains in parallel
//   - Split R-hat and bulk ESS convergence warnings
//   - Linear-predictor and posterior-predictive draws on an 80-point grid
//   - Scatter, posterior trend and predictive ribbon plots (SVG, PNG or PDF)
//   - Optional compressed posterior draws dump (zstd, s2, lz4) and a JSON run manifest
//
// # Basic Usage
//
//	res, err := slumber.Analyze(ctx,
//	    slumber.WithOutputDir("out"),
//	    slumber.WithSeed(1234),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range res.Fit.Summary() {
//	    fmt.Println(s)
//	}
//
// # Package Structure
//
// This package is a thin wrapper over the pipeline package. The stages can be
// used on their own: dataset and transform prepare the data, bayes fits the
// model, predict and summary evaluate it, plotspec and render draw it.
package slumber

import (
	"context"
	"log/slog"

	"github.com/arloliu/slumber/bayes"
	"github.com/arloliu/slumber/format"
	"github.com/arloliu/slumber/internal/config"
	"github.com/arloliu/slumber/internal/options"
	"github.com/arloliu/slumber/pipeline"
	"github.com/arloliu/slumber/render"
)

// Version is the release version recorded in run manifests.
const Version = "0.1.0"

// Result is the outcome of Analyze.
type Result = pipeline.Result

type analyzeConfig struct {
	cfg  *config.Config
	opts []pipeline.Option
}

// Option configures Analyze.
type Option = options.Option[*analyzeConfig]

// WithConfigFile loads settings from a YAML file. It replaces every setting
// applied before it, so pass it first.
func WithConfigFile(path string) Option {
	return options.New(func(a *analyzeConfig) error {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return err
		}
		a.cfg = cfg

		return nil
	})
}

// WithDataPath analyses a CSV file instead of the built-in table.
func WithDataPath(path string) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Data.Path = path
	})
}

// WithHighlight sets the species labelled on the scatter plot.
func WithHighlight(names ...string) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Data.Highlight = names
	})
}

// WithOutputDir sets the artefact directory.
func WithOutputDir(dir string) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Output.Dir = dir
	})
}

// WithFormat sets the plot format.
func WithFormat(f format.PlotFormat) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Output.Format = f.String()
	})
}

// WithDrawsCompression enables the draws dump with codec ct.
func WithDrawsCompression(ct format.CompressionType) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Output.Draws = true
		a.cfg.Output.Compression = ct.String()
	})
}

// WithSeed sets the base seed of the sampler and the predictive draws.
func WithSeed(seed uint64) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Model.Seed = seed
	})
}

// WithChains sets the number of chains.
func WithChains(n int) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Model.Chains = n
	})
}

// WithIterations sets warmup and kept iterations per chain.
func WithIterations(warmup, iterations int) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Model.Warmup = warmup
		a.cfg.Model.Iterations = iterations
	})
}

// WithPriors sets the intercept, slope and sigma priors.
func WithPriors(intercept, slope bayes.Normal, sigma bayes.Exponential) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.cfg.Model.Priors.Intercept = intercept
		a.cfg.Model.Priors.Slope = slope
		a.cfg.Model.Priors.Sigma = sigma
	})
}

// WithLogger sets the logger for progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.opts = append(a.opts, pipeline.WithLogger(l))
	})
}

// WithSampler replaces the default Gibbs sampler.
func WithSampler(s bayes.Sampler) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.opts = append(a.opts, pipeline.WithSampler(s))
	})
}

// WithRenderer replaces the default gonum renderer.
func WithRenderer(r render.Renderer) Option {
	return options.NoError(func(a *analyzeConfig) {
		a.opts = append(a.opts, pipeline.WithRenderer(r))
	})
}

// WithoutArtifacts runs the analysis without writing any file.
func WithoutArtifacts() Option {
	return options.NoError(func(a *analyzeConfig) {
		a.opts = append(a.opts, pipeline.WithoutArtifacts())
	})
}

// Analyze runs the full analysis with default settings adjusted by opts.
func Analyze(ctx context.Context, opts ...Option) (*Result, error) {
	a := &analyzeConfig{cfg: config.Default()}
	if err := options.Apply(a, opts...); err != nil {
		return nil, err
	}

	return pipeline.Run(ctx, a.cfg, append(a.opts, pipeline.WithVersion(Version))...)
}
