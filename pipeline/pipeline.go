// Package pipeline runs the complete sleep analysis: load, prepare, baseline,
// fit, predict, summarise, plot and write artefacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/arloliu/slumber/bayes"
	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/internal/artifact"
	"github.com/arloliu/slumber/internal/config"
	"github.com/arloliu/slumber/internal/hash"
	"github.com/arloliu/slumber/internal/logging"
	"github.com/arloliu/slumber/internal/options"
	"github.com/arloliu/slumber/plotspec"
	"github.com/arloliu/slumber/predict"
	"github.com/arloliu/slumber/regression"
	"github.com/arloliu/slumber/render"
	"github.com/arloliu/slumber/summary"
)

// SourceBuiltin names the embedded msleep table as a data source.
const SourceBuiltin = "builtin:msleep"

// Result holds every intermediate product of a run.
type Result struct {
	RunID  string
	Source string

	Frame       *dataset.Frame
	Highlighted []dataset.Row

	// Baseline holds the least-squares fits, nil when the frame is too small for
	// them. NaiveOutOfRange counts grid points where the untransformed line
	// leaves (0, 24) hours.
	Baseline        *regression.Result
	NaiveOutOfRange int

	Fit        *bayes.Fit
	Grid       *predict.Grid
	Linear     *predict.Draws
	Predictive *predict.Draws
	TrendDraws *predict.Draws
	Bands      []summary.Band

	Plots     []*plotspec.Plot
	Artifacts []artifact.Artifact

	// Warnings collects data, highlight and convergence warnings in the order
	// they were raised.
	Warnings []string
}

type runConfig struct {
	logger        *slog.Logger
	sampler       bayes.Sampler
	renderer      render.Renderer
	observations  []dataset.Observation
	skipArtifacts bool
	version       string
}

// Option configures Run.
type Option = options.Option[*runConfig]

// WithLogger sets the logger for progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithSampler replaces the default Gibbs sampler.
func WithSampler(s bayes.Sampler) Option {
	return options.New(func(c *runConfig) error {
		if s == nil {
			return fmt.Errorf("pipeline: nil sampler")
		}
		c.sampler = s

		return nil
	})
}

// WithRenderer replaces the default gonum renderer.
func WithRenderer(r render.Renderer) Option {
	return options.New(func(c *runConfig) error {
		if r == nil {
			return fmt.Errorf("pipeline: nil renderer")
		}
		c.renderer = r

		return nil
	})
}

// WithObservations analyses obs instead of loading the configured data source.
func WithObservations(obs []dataset.Observation) Option {
	return options.NoError(func(c *runConfig) {
		c.observations = obs
	})
}

// WithoutArtifacts builds the plots but writes nothing to disk.
func WithoutArtifacts() Option {
	return options.NoError(func(c *runConfig) {
		c.skipArtifacts = true
	})
}

// WithVersion sets the version recorded in the manifest.
func WithVersion(v string) Option {
	return options.NoError(func(c *runConfig) {
		c.version = v
	})
}

// Load reads the configured data source: the CSV file at cfg.Data.Path, or the
// built-in table when the path is empty.
func Load(cfg *config.Config) ([]dataset.Observation, string, error) {
	if cfg.Data.Path == "" {
		obs, err := dataset.MSleep()
		return obs, SourceBuiltin, err
	}

	f, err := os.Open(cfg.Data.Path)
	if err != nil {
		return nil, cfg.Data.Path, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	obs, err := dataset.ReadCSV(f)
	if err != nil {
		return nil, cfg.Data.Path, fmt.Errorf("read dataset %s: %w", cfg.Data.Path, err)
	}

	return obs, cfg.Data.Path, nil
}

// FitOptions translates the model section of cfg into bayes options.
func FitOptions(cfg *config.Config, logger *slog.Logger) []bayes.FitOption {
	return []bayes.FitOption{
		bayes.WithChains(cfg.Model.Chains),
		bayes.WithWarmup(cfg.Model.Warmup),
		bayes.WithIterations(cfg.Model.Iterations),
		bayes.WithSeed(cfg.Model.Seed),
		bayes.WithRHatThreshold(cfg.Model.RHatThreshold),
		bayes.WithMinESS(cfg.Model.MinESS),
		bayes.WithLogger(logger),
	}
}

// Run executes the analysis described by cfg. Any stage failure aborts the run;
// data and convergence problems are logged as warnings and collected in the
// result.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rc := &runConfig{logger: logging.Discard(), version: "dev"}
	if err := options.Apply(rc, opts...); err != nil {
		return nil, err
	}
	if rc.sampler == nil {
		s, err := bayes.NewGibbsSampler()
		if err != nil {
			return nil, err
		}
		rc.sampler = s
	}
	if rc.renderer == nil {
		r, err := render.NewGonumRenderer(
			render.WithFormat(cfg.PlotFormat()),
			render.WithSize(vg.Length(cfg.Output.Width)*vg.Inch, vg.Length(cfg.Output.Height)*vg.Inch),
		)
		if err != nil {
			return nil, err
		}
		rc.renderer = r
	}

	start := time.Now()
	manifest := artifact.NewManifest(rc.version)
	log := rc.logger.With("run_id", manifest.RunID)
	res := &Result{RunID: manifest.RunID}

	warn := func(msg string) {
		log.Warn(msg)
		res.Warnings = append(res.Warnings, msg)
	}

	// Load and prepare.
	obs, source := rc.observations, "observations"
	if obs == nil {
		var err error
		if obs, source, err = Load(cfg); err != nil {
			return nil, err
		}
	}
	res.Source = source

	frame, err := dataset.Prepare(obs)
	if err != nil {
		return nil, fmt.Errorf("prepare dataset: %w", err)
	}
	res.Frame = frame

	report := frame.Report()
	log.Info("dataset prepared",
		"source", source,
		"input", report.Input,
		"retained", report.Retained,
		"missing_brainwt", report.MissingBrainWt,
		"degenerate", report.Degenerate)
	for _, w := range report.Warnings {
		warn(w)
	}

	var unknown []string
	res.Highlighted, unknown = frame.Select(cfg.Data.Highlight...)
	for _, name := range unknown {
		warn(fmt.Sprintf("highlighted species %q is not in the model frame", name))
	}

	// Prediction grid and least-squares baseline.
	grid, err := predict.GridFor(frame, cfg.Predict.GridSize)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	res.Grid = grid

	baseline, err := regression.Compare(frame)
	switch {
	case errors.Is(err, regression.ErrTooFewPoints):
		warn(fmt.Sprintf("least-squares baseline skipped: %v", err))
	case err != nil:
		return nil, fmt.Errorf("fit baseline: %w", err)
	default:
		res.Baseline = baseline
		naive := baseline.Naive()
		res.NaiveOutOfRange = regression.OutOfRange(naive.Estimator, grid.Values())
		log.Info("baseline fitted",
			"naive", naive.Formula,
			"naive_r2", naive.RSquared,
			"logit_r2", baseline.Logit().RSquared,
			"naive_out_of_range", res.NaiveOutOfRange)
	}

	// Posterior.
	fit, err := bayes.FitModel(ctx, rc.sampler, cfg.Spec(), frame, FitOptions(cfg, log)...)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	res.Fit = fit
	log.Info("posterior sampled", "draws", fit.NumDraws(), "elapsed", fit.Elapsed)
	for _, s := range fit.Summary() {
		log.Debug("posterior", "param", s.Name, "mean", s.Mean, "sd", s.SD, "rhat", s.RHat, "ess", s.ESS)
	}
	for _, w := range fit.Warnings {
		warn(w)
	}

	// Predictions and summary.
	if res.Linear, err = predict.Linear(fit, grid); err != nil {
		return nil, fmt.Errorf("linear predictions: %w", err)
	}

	predRNG := rand.New(rand.NewPCG(hash.Seed(cfg.Model.Seed, "predictive"), 0))
	if res.Predictive, err = predict.Predictive(fit, grid, predRNG); err != nil {
		return nil, fmt.Errorf("predictive draws: %w", err)
	}

	trendRNG := rand.New(rand.NewPCG(hash.Seed(cfg.Model.Seed, "trend"), 0))
	if res.TrendDraws, err = predict.SampleRows(res.Linear, cfg.Predict.TrendDraws, trendRNG); err != nil {
		return nil, fmt.Errorf("sample trend draws: %w", err)
	}

	if res.Bands, err = summary.Quantiles(res.Predictive.Values, grid.Values(), cfg.Predict.Probs); err != nil {
		return nil, fmt.Errorf("summarise predictions: %w", err)
	}

	// Plots.
	var trendOpts []plotspec.TrendOption
	if cfg.Predict.Baseline && res.Baseline != nil {
		est, err := overlayEstimator(res.Baseline, cfg.BaselineModel())
		if err != nil {
			return nil, err
		}
		trendOpts = append(trendOpts, plotspec.WithBaseline(est))
	}
	trend, err := plotspec.Trend(frame, res.TrendDraws, trendOpts...)
	if err != nil {
		return nil, err
	}
	res.Plots = []*plotspec.Plot{
		plotspec.Scatter(frame, res.Highlighted),
		trend,
		plotspec.Ribbon(frame, res.Bands),
	}

	if rc.skipArtifacts {
		return res, nil
	}

	// Artefacts.
	w, err := artifact.NewWriter(cfg.Output.Dir)
	if err != nil {
		return nil, err
	}
	for _, p := range res.Plots {
		a, err := w.Plot(ctx, rc.renderer, p)
		if err != nil {
			return nil, err
		}
		log.Info("plot written", "path", a.Path, "bytes", a.Bytes)
	}

	if cfg.Output.Draws {
		a, stats, err := w.Draws(fit, cfg.Compression())
		if err != nil {
			return nil, err
		}
		log.Info("draws written",
			"path", a.Path,
			"codec", stats.Algorithm,
			"bytes", stats.CompressedSize,
			"ratio", stats.CompressionRatio())
	}

	manifest.Data = artifact.DataInfo{
		Source:      source,
		Fingerprint: fmt.Sprintf("%016x", frame.Fingerprint()),
		Input:       report.Input,
		Retained:    report.Retained,
		Missing:     report.MissingBrainWt,
		Degenerate:  report.Degenerate,
	}
	manifest.SetFit(fit)
	manifest.Warnings = res.Warnings
	if res.Baseline != nil {
		naive := res.Baseline.Naive()
		manifest.Baseline = &artifact.BaselineInfo{
			Formula:    naive.Formula,
			RSquared:   artifact.Number(naive.RSquared),
			RMSE:       artifact.Number(naive.RMSE),
			OutOfRange: res.NaiveOutOfRange,
		}
	}
	manifest.ElapsedSecs = artifact.Number(time.Since(start).Seconds())

	a, err := w.Manifest(manifest)
	if err != nil {
		return nil, err
	}
	log.Info("manifest written", "path", a.Path)

	res.Artifacts = w.Artifacts()

	return res, nil
}

// overlayEstimator builds the trend plot overlay from the fitted baseline of type mt.
func overlayEstimator(baseline *regression.Result, mt regression.ModelType) (regression.Estimator, error) {
	m := baseline.Model(mt)
	if m == nil {
		return nil, fmt.Errorf("no %s baseline was fitted", mt)
	}

	est, err := regression.NewEstimator(mt, m.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("baseline overlay: %w", err)
	}

	return est, nil
}
