package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/slumber/internal/config"
)

// writeTestConfig writes a small, fast run configuration into dir.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()

	cfg := `model:
  chains: 2
  warmup: 150
  iterations: 150
  seed: 7
predict:
  grid_size: 20
  trend_draws: 50
output:
  dir: ` + filepath.Join(dir, "out") + `
  compression: none
logging:
  level: error
  no_color: true
`
	path := filepath.Join(dir, "slumber.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvOutputDir, config.EnvSeed, config.EnvChains,
		config.EnvLogLevel, config.EnvDataPath, config.EnvFormat,
	} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "slumber", cmd.Use)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"data", "fit", "run", "version"}, names)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "slumber version "+version)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)

	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, version, v["version"])
}

func TestDataCmd(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "data")
	require.NoError(t, err)
	assert.Contains(t, out, "logit_sleep_ratio")
	assert.Contains(t, out, "Human")
	assert.Contains(t, out, "builtin:msleep")
}

func TestDataCmd_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "data", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestFitCmd_JSON(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeTestConfig(t, dir)

	out, err := execute(t, "fit", "--config", path, "--json")
	require.NoError(t, err)

	var res struct {
		Summary []map[string]any `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Summary, 3)
	assert.Equal(t, "(Intercept)", res.Summary[0]["name"])
	assert.Equal(t, "sigma", res.Summary[2]["name"])
}

func TestRunCmd(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeTestConfig(t, dir)
	outDir := filepath.Join(dir, "flagged")

	out, err := execute(t, "run", "--config", path, "--out", outDir, "--seed", "11")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "run "))

	for _, name := range []string{"scatter.svg", "trend.svg", "ribbon.svg", "draws.csv", "manifest.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunCmd_InvalidFormat(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeTestConfig(t, dir)

	_, err := execute(t, "run", "--config", path, "--format", "gif")
	require.Error(t, err)
}
