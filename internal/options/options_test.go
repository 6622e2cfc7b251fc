package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type chainSettings struct {
	Chains int
	Label  string
	Thin   bool
	Last   string
}

func (c *chainSettings) setChains(n int) error {
	if n <= 0 {
		return errors.New("chains must be positive")
	}
	c.Chains = n
	c.Last = "chains"

	return nil
}

func withChains(n int) Option[*chainSettings] {
	return New(func(c *chainSettings) error { return c.setChains(n) })
}

func withLabel(label string) Option[*chainSettings] {
	return NoError(func(c *chainSettings) {
		c.Label = label
		c.Last = "label"
	})
}

func TestNew(t *testing.T) {
	t.Run("applies value", func(t *testing.T) {
		cfg := &chainSettings{}
		require.NoError(t, withChains(4).apply(cfg))
		require.Equal(t, 4, cfg.Chains)
	})

	t.Run("propagates error", func(t *testing.T) {
		cfg := &chainSettings{}
		err := withChains(0).apply(cfg)
		require.ErrorContains(t, err, "chains must be positive")
		require.Zero(t, cfg.Chains)
	})
}

func TestNoError(t *testing.T) {
	cfg := &chainSettings{}
	require.NoError(t, withLabel("posterior").apply(cfg))
	require.Equal(t, "posterior", cfg.Label)
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &chainSettings{}
		err := Apply(cfg, withChains(2), withLabel("a"), NoError(func(c *chainSettings) { c.Thin = true }))
		require.NoError(t, err)
		require.Equal(t, 2, cfg.Chains)
		require.Equal(t, "a", cfg.Label)
		require.True(t, cfg.Thin)
		require.Equal(t, "label", cfg.Last)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &chainSettings{}
		err := Apply(cfg, withChains(3), withChains(-1), withLabel("never"))
		require.Error(t, err)
		require.Equal(t, 3, cfg.Chains)
		require.Empty(t, cfg.Label)
		require.Equal(t, "chains", cfg.Last)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &chainSettings{}
		err := Apply(cfg, nil, withLabel("b"))
		require.NoError(t, err)
		require.Equal(t, "b", cfg.Label)
	})

	t.Run("empty list", func(t *testing.T) {
		cfg := &chainSettings{}
		require.NoError(t, Apply(cfg))
		require.Equal(t, chainSettings{}, *cfg)
	})
}
