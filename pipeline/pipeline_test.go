package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/slumber/bayes"
	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/internal/config"
	"github.com/arloliu/slumber/plotspec"
)

func quickConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Model.Chains = 2
	cfg.Model.Warmup = 100
	cfg.Model.Iterations = 200
	cfg.Predict.TrendDraws = 50
	cfg.Output.Dir = t.TempDir()

	return cfg
}

func TestRun(t *testing.T) {
	cfg := quickConfig(t)
	cfg.Data.Highlight = append(cfg.Data.Highlight, "Unicorn")

	res, err := Run(context.Background(), cfg, WithVersion("test"))
	require.NoError(t, err)

	assert.Equal(t, SourceBuiltin, res.Source)
	assert.Equal(t, 56, res.Frame.Len())
	assert.Len(t, res.Highlighted, len(config.DefaultHighlights))
	assert.Contains(t, res.Warnings, `highlighted species "Unicorn" is not in the model frame`)

	assert.Equal(t, 80, res.Grid.Len())
	assert.Equal(t, 400, res.Fit.NumDraws())
	assert.Equal(t, 400, res.Linear.NumDraws())
	assert.Equal(t, 400, res.Predictive.NumDraws())
	assert.Equal(t, 50, res.TrendDraws.NumDraws())
	require.Len(t, res.Bands, 80)
	for _, b := range res.Bands {
		assert.LessOrEqual(t, b.Lower, b.Median)
		assert.LessOrEqual(t, b.Median, b.Upper)
		assert.Greater(t, b.Lower, 0.0)
		assert.Less(t, b.Upper, 24.0)
	}

	require.Len(t, res.Plots, 3)
	assert.Equal(t, plotspec.NameScatter, res.Plots[0].Name)
	assert.NotNil(t, res.Plots[1].Layer(plotspec.LayerBaseline))

	names := make([]string, 0, len(res.Artifacts))
	for _, a := range res.Artifacts {
		names = append(names, a.Name)
		assert.FileExists(t, a.Path)
	}
	assert.Equal(t, []string{"scatter.svg", "trend.svg", "ribbon.svg", "draws.csv.zst", "manifest.json"}, names)

	raw, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "manifest.json"))
	require.NoError(t, err)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, res.RunID, manifest["run_id"])
	assert.Equal(t, "test", manifest["version"])
	data := manifest["data"].(map[string]any)
	assert.InDelta(t, 56, data["retained"], 0)
	assert.InDelta(t, 27, data["missing_brainwt"], 0)
	assert.Len(t, data["fingerprint"], 16)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := quickConfig(t)

	first, err := Run(context.Background(), cfg, WithoutArtifacts())
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg, WithoutArtifacts())
	require.NoError(t, err)

	assert.Equal(t, first.Bands, second.Bands)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Empty(t, first.Artifacts)

	entries, err := os.ReadDir(cfg.Output.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_DegenerateRowsWarn(t *testing.T) {
	cfg := quickConfig(t)
	cfg.Data.Highlight = nil
	cfg.Predict.Baseline = false

	obs := []dataset.Observation{
		{Name: "a", SleepTotal: 3, BrainWt: dataset.Some(0.001), BodyWt: 0.01},
		{Name: "b", SleepTotal: 12, BrainWt: dataset.Some(0.1), BodyWt: 1},
		{Name: "c", SleepTotal: 20, BrainWt: dataset.Some(5), BodyWt: 50},
		{Name: "d", SleepTotal: 9, BrainWt: dataset.Some(0.02), BodyWt: 0.3},
		{Name: "e", SleepTotal: 24, BrainWt: dataset.Some(0.2), BodyWt: 2},
		{Name: "f", SleepTotal: 10},
	}

	res, err := Run(context.Background(), cfg, WithObservations(obs), WithoutArtifacts())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Frame.Len())
	require.NotEmpty(t, res.Warnings)
	assert.True(t, strings.HasPrefix(res.Warnings[0], `excluded "e"`), res.Warnings[0])
	assert.Nil(t, res.Plots[1].Layer(plotspec.LayerBaseline))
}

func TestRun_TwoSpeciesSkipsBaseline(t *testing.T) {
	cfg := quickConfig(t)
	cfg.Data.Highlight = nil

	obs := []dataset.Observation{
		{Name: "a", SleepTotal: 3, BrainWt: dataset.Some(0.001), BodyWt: 0.01},
		{Name: "b", SleepTotal: 12, BrainWt: dataset.Some(0.1), BodyWt: 1},
	}

	res, err := Run(context.Background(), cfg, WithObservations(obs))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Frame.Len())
	assert.Nil(t, res.Baseline)
	assert.Zero(t, res.NaiveOutOfRange)
	require.NotEmpty(t, res.Warnings)
	assert.True(t, strings.HasPrefix(res.Warnings[0], "least-squares baseline skipped"), res.Warnings[0])
	assert.Equal(t, 400, res.Fit.NumDraws())
	assert.Nil(t, res.Plots[1].Layer(plotspec.LayerBaseline))

	raw, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "manifest.json"))
	require.NoError(t, err)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.NotContains(t, manifest, "baseline")
}

func TestRun_LogitBaselineOverlay(t *testing.T) {
	cfg := quickConfig(t)
	cfg.Predict.BaselineModel = "logit"

	res, err := Run(context.Background(), cfg, WithoutArtifacts())
	require.NoError(t, err)

	layer := res.Plots[1].Layer(plotspec.LayerBaseline)
	require.NotNil(t, layer)
	require.NotEmpty(t, layer.Points)

	logit := res.Baseline.Logit().Estimator
	for i, p := range layer.Points {
		assert.Greater(t, p.Y, 0.0)
		assert.Less(t, p.Y, 24.0)
		assert.InDelta(t, logit.Estimate(res.Grid.At(i)), p.Y, 1e-9)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := quickConfig(t)
		cfg.Model.Chains = 0
		_, err := Run(context.Background(), cfg)
		require.Error(t, err)
	})

	t.Run("missing data file", func(t *testing.T) {
		cfg := quickConfig(t)
		cfg.Data.Path = filepath.Join(t.TempDir(), "missing.csv")
		_, err := Run(context.Background(), cfg)
		require.Error(t, err)
	})

	t.Run("sampler failure", func(t *testing.T) {
		boom := errors.New("boom")
		sampler := bayes.SamplerFunc(func(context.Context, bayes.Problem) (*bayes.Chains, error) {
			return nil, boom
		})
		_, err := Run(context.Background(), quickConfig(t), WithSampler(sampler))
		require.ErrorIs(t, err, boom)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, quickConfig(t))
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("nil options", func(t *testing.T) {
		_, err := Run(context.Background(), quickConfig(t), WithSampler(nil))
		require.Error(t, err)
		_, err = Run(context.Background(), quickConfig(t), WithRenderer(nil))
		require.Error(t, err)
	})
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mammals.csv")
	content := "name,genus,vore,order,conservation,sleep_total,sleep_rem,sleep_cycle,awake,brainwt,bodywt\n" +
		"Mouse,Mus,herbi,Rodentia,nt,12.5,1.4,0.2,11.5,0.0004,0.022\n" +
		"Giant,Gigas,herbi,Order,NA,4,NA,NA,20,NA,800\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := config.Default()
	cfg.Data.Path = path

	obs, source, err := Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, path, source)
	require.Len(t, obs, 2)
	assert.Equal(t, "Mouse", obs[0].Name)
	assert.False(t, obs[1].BrainWt.Valid)
}
