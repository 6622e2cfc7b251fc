// Package config loads slumber run configuration from defaults, a YAML file and
// environment variables, in that order. Command-line flags are applied last by
// the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/slumber/bayes"
	"github.com/arloliu/slumber/format"
	"github.com/arloliu/slumber/internal/logging"
	"github.com/arloliu/slumber/predict"
	"github.com/arloliu/slumber/regression"
	"github.com/arloliu/slumber/summary"
)

// Environment variables that override file settings.
const (
	EnvOutputDir = "SLUMBER_OUTPUT_DIR"
	EnvSeed      = "SLUMBER_SEED"
	EnvChains    = "SLUMBER_CHAINS"
	EnvLogLevel  = "SLUMBER_LOG_LEVEL"
	EnvDataPath  = "SLUMBER_DATA_PATH"
	EnvFormat    = "SLUMBER_FORMAT"
)

// DefaultHighlights are the species labelled on the scatter plot.
var DefaultHighlights = []string{"Human", "Cow", "Asian elephant", "Little brown bat", "Domestic cat"}

// Config contains all settings of a run.
type Config struct {
	// Data selects the input table and the labelled species.
	Data DataConfig `json:"data" yaml:"data"`

	// Model contains the priors and sampler settings.
	Model ModelConfig `json:"model" yaml:"model"`

	// Predict contains the grid and summary settings.
	Predict PredictConfig `json:"predict" yaml:"predict"`

	// Output contains the artefact settings.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains the console log settings.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// DataConfig selects the input data.
type DataConfig struct {
	// Path is a CSV file with the msleep columns. Empty means the built-in table.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Highlight names the species marked on the scatter plot.
	Highlight []string `json:"highlight" yaml:"highlight"`
}

// PriorsConfig holds the priors of the regression.
type PriorsConfig struct {
	Intercept bayes.Normal      `json:"intercept" yaml:"intercept"`
	Slope     bayes.Normal      `json:"slope" yaml:"slope"`
	Sigma     bayes.Exponential `json:"sigma" yaml:"sigma"`
}

// ModelConfig configures the posterior fit.
type ModelConfig struct {
	Priors PriorsConfig `json:"priors" yaml:"priors"`

	Chains     int    `json:"chains" yaml:"chains"`
	Warmup     int    `json:"warmup" yaml:"warmup"`
	Iterations int    `json:"iterations" yaml:"iterations"`
	Seed       uint64 `json:"seed" yaml:"seed"`

	// RHatThreshold and MinESS bound the convergence warnings.
	RHatThreshold float64 `json:"rhat_threshold" yaml:"rhat_threshold"`
	MinESS        float64 `json:"min_ess" yaml:"min_ess"`
}

// PredictConfig configures predictions and their summary.
type PredictConfig struct {
	// GridSize is the number of brain mass values predicted at.
	GridSize int `json:"grid_size" yaml:"grid_size"`

	// TrendDraws is the number of posterior lines on the trend plot.
	TrendDraws int `json:"trend_draws" yaml:"trend_draws"`

	// Probs are the quantiles of the predictive ribbon.
	Probs summary.Probs `json:"probs" yaml:"probs"`

	// Baseline overlays a least-squares line on the trend plot.
	Baseline bool `json:"baseline" yaml:"baseline"`

	// BaselineModel selects the overlaid line: "linear" (untransformed hours,
	// the default) or "logit".
	BaselineModel string `json:"baseline_model" yaml:"baseline_model"`
}

// OutputConfig configures the written artefacts.
type OutputConfig struct {
	// Dir is the directory the artefacts are written to.
	Dir string `json:"dir" yaml:"dir"`

	// Format is the plot format: "svg", "png" or "pdf".
	Format string `json:"format" yaml:"format"`

	// Width and Height are the plot size in inches.
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// Draws enables the posterior draws dump.
	Draws bool `json:"draws" yaml:"draws"`

	// Compression is the codec of the draws dump: "none", "zstd", "s2" or "lz4".
	Compression string `json:"compression" yaml:"compression"`
}

// LoggingConfig configures console logging.
type LoggingConfig struct {
	// Level is "debug", "info" (default), "warn" or "error".
	Level string `json:"level" yaml:"level"`

	// NoColor disables ANSI colors.
	NoColor bool `json:"no_color" yaml:"no_color"`
}

// Default returns a Config with the standard analysis settings.
func Default() *Config {
	spec := bayes.DefaultSpec()

	return &Config{
		Data: DataConfig{
			Highlight: append([]string(nil), DefaultHighlights...),
		},
		Model: ModelConfig{
			Priors: PriorsConfig{
				Intercept: spec.Coefficients[0],
				Slope:     spec.Coefficients[1],
				Sigma:     spec.Sigma,
			},
			Chains:        bayes.DefaultChains,
			Warmup:        bayes.DefaultWarmup,
			Iterations:    bayes.DefaultIterations,
			Seed:          bayes.DefaultSeed,
			RHatThreshold: bayes.DefaultRHatThreshold,
			MinESS:        bayes.DefaultMinESS,
		},
		Predict: PredictConfig{
			GridSize:      predict.DefaultGridSize,
			TrendDraws:    predict.DefaultTrendDraws,
			Probs:         summary.DefaultProbs,
			Baseline:      true,
			BaselineModel: regression.ModelTypeLinear.String(),
		},
		Output: OutputConfig{
			Dir:         "out",
			Format:      format.PlotSVG.String(),
			Width:       7,
			Height:      5,
			Draws:       true,
			Compression: "zstd",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults, overlaid with the YAML file at path (if path is
// not empty) and then with environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file. Unset keys keep their
// default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	spec := c.Spec()
	for _, p := range spec.Coefficients {
		if !(p.Scale > 0) {
			return fmt.Errorf("prior scale must be positive, got %s", p)
		}
	}
	if !(c.Model.Priors.Sigma.Rate > 0) {
		return fmt.Errorf("sigma prior rate must be positive, got %v", c.Model.Priors.Sigma.Rate)
	}

	if c.Model.Chains < 1 {
		return fmt.Errorf("chains must be at least 1, got %d", c.Model.Chains)
	}
	if c.Model.Warmup < 0 {
		return fmt.Errorf("warmup must be non-negative, got %d", c.Model.Warmup)
	}
	if c.Model.Iterations < 4 {
		return fmt.Errorf("iterations must be at least 4, got %d", c.Model.Iterations)
	}
	if !(c.Model.RHatThreshold > 1) {
		return fmt.Errorf("rhat_threshold must exceed 1, got %v", c.Model.RHatThreshold)
	}
	if c.Model.MinESS < 0 {
		return fmt.Errorf("min_ess must be non-negative, got %v", c.Model.MinESS)
	}

	if c.Predict.GridSize < 2 {
		return fmt.Errorf("grid_size must be at least 2, got %d", c.Predict.GridSize)
	}
	if c.Predict.TrendDraws < 1 {
		return fmt.Errorf("trend_draws must be at least 1, got %d", c.Predict.TrendDraws)
	}
	if c.BaselineModel() < 0 {
		return fmt.Errorf("unknown baseline_model %q (valid: linear, logit)", c.Predict.BaselineModel)
	}
	if err := c.Predict.Probs.Validate(); err != nil {
		return err
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	if _, err := format.ParsePlotFormat(c.Output.Format); err != nil {
		return err
	}
	if !(c.Output.Width > 0) || !(c.Output.Height > 0) {
		return fmt.Errorf("plot size must be positive, got %vx%v", c.Output.Width, c.Output.Height)
	}
	if _, err := format.ParseCompression(c.Output.Compression); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}

// Spec returns the model spec described by the priors.
func (c *Config) Spec() bayes.Spec {
	spec := bayes.DefaultSpec()
	spec.Coefficients = []bayes.Normal{c.Model.Priors.Intercept, c.Model.Priors.Slope}
	spec.Sigma = c.Model.Priors.Sigma

	return spec
}

// BaselineModel returns the model type of the trend plot overlay, or a negative
// value for an unknown name.
func (c *Config) BaselineModel() regression.ModelType {
	return regression.ModelTypeFromString(c.Predict.BaselineModel)
}

// PlotFormat returns the parsed plot format. Call Validate first.
func (c *Config) PlotFormat() format.PlotFormat {
	f, _ := format.ParsePlotFormat(c.Output.Format)
	return f
}

// Compression returns the parsed draws codec. Call Validate first.
func (c *Config) Compression() format.CompressionType {
	ct, _ := format.ParseCompression(c.Output.Compression)
	return ct
}

// applyEnvOverrides applies environment variable overrides to the config.
// Values that do not parse are ignored.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}

	if v := os.Getenv(EnvSeed); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Model.Seed = n
		}
	}

	if v := os.Getenv(EnvChains); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Model.Chains = n
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvDataPath); v != "" {
		c.Data.Path = v
	}

	if v := os.Getenv(EnvFormat); v != "" {
		c.Output.Format = strings.ToLower(v)
	}
}
