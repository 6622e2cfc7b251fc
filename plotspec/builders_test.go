package plotspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/predict"
	"github.com/arloliu/slumber/regression"
	"github.com/arloliu/slumber/summary"
)

func msleepFrame(t *testing.T) *dataset.Frame {
	t.Helper()

	obs, err := dataset.MSleep()
	require.NoError(t, err)
	frame, err := dataset.Prepare(obs)
	require.NoError(t, err)

	return frame
}

func TestScatter(t *testing.T) {
	frame := msleepFrame(t)
	rows, unknown := frame.Select("Human", "Cow", "Unicorn")
	require.Equal(t, []string{"Unicorn"}, unknown)

	p := Scatter(frame, rows)
	require.NoError(t, p.Validate())
	assert.Equal(t, NameScatter, p.Name)
	assert.True(t, p.X.Log)
	assert.False(t, p.Y.Fixed)
	require.Len(t, p.Layers, 3)

	obs := p.Layer(LayerObserved)
	require.NotNil(t, obs)
	assert.Len(t, obs.Points, frame.Len())

	labels := p.Layer(LayerNames)
	require.NotNil(t, labels)
	assert.Equal(t, KindLabels, labels.Kind)
	assert.Equal(t, []string{"Human", "Cow"}, labels.Labels)
	assert.Equal(t, rows[0].BrainWt.Float64, labels.Points[0].X, "x is in kg, not log10")

	bare := Scatter(frame, nil)
	assert.Len(t, bare.Layers, 1)
}

func TestTrend(t *testing.T) {
	frame := msleepFrame(t)
	grid, err := predict.NewGrid(-2, 0, 3)
	require.NoError(t, err)
	lin := &predict.Draws{Grid: grid, Values: mat.NewDense(2, 3, []float64{
		10, 9, 8,
		11, 10, 9,
	})}

	p, err := Trend(frame, lin)
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	require.Len(t, p.Layers, 3)
	assert.Equal(t, KindLine, p.Layers[0].Kind)
	assert.Equal(t, []Point{{0.01, 10}, {0.1, 9}, {1, 8}}, p.Layers[0].Points)
	assert.Equal(t, DefaultDrawAlpha, p.Layers[0].Style.Alpha)
	assert.Equal(t, LayerObserved, p.Layers[2].Name)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Equal(t, 24.0, p.Y.Max)

	naive := regression.NewLinearEstimator(10, 20)
	p, err = Trend(frame, lin, WithBaseline(naive), WithDrawAlpha(0.1))
	require.NoError(t, err)
	base := p.Layer(LayerBaseline)
	require.NotNil(t, base)
	assert.Equal(t, -30.0, base.Points[0].Y)
	assert.Equal(t, -30.0, p.Y.Min)
	assert.Equal(t, 24.0, p.Y.Max)
	assert.Equal(t, 0.1, p.Layers[0].Style.Alpha)

	_, err = Trend(frame, lin, WithDrawAlpha(0))
	require.Error(t, err)
}

func TestRibbon(t *testing.T) {
	frame := msleepFrame(t)
	bands := []summary.Band{
		{X: -1, Lower: 5, Median: 10, Upper: 15},
		{X: 0, Lower: 3, Median: 8, Upper: 13},
	}

	p := Ribbon(frame, bands)
	require.NoError(t, p.Validate())
	require.Len(t, p.Layers, 3)

	ribbon := p.Layer(LayerInterval)
	require.NotNil(t, ribbon)
	assert.Equal(t, KindRibbon, ribbon.Kind)
	assert.Equal(t, []float64{5, 3}, ribbon.Lower)
	assert.Equal(t, []float64{15, 13}, ribbon.Upper)
	assert.InDelta(t, 0.1, ribbon.Points[0].X, 1e-15)

	median := p.Layer(LayerMedian)
	require.NotNil(t, median)
	assert.Equal(t, Point{X: 1, Y: 8}, median.Points[1])
}

func TestPlot_Validate(t *testing.T) {
	bad := &Plot{Layers: []Layer{{Kind: KindRibbon, Points: make([]Point, 2), Lower: []float64{1}}}}
	require.Error(t, bad.Validate())

	bad = &Plot{Layers: []Layer{{Kind: KindLabels, Points: make([]Point, 1)}}}
	require.Error(t, bad.Validate())

	bad = &Plot{Layers: []Layer{{Kind: Kind(42)}}}
	require.Error(t, bad.Validate())

	bad = &Plot{Y: Axis{Fixed: true, Min: 1, Max: 1}}
	require.Error(t, bad.Validate())

	assert.Equal(t, "ribbon", KindRibbon.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
