package plotspec

import (
	"fmt"
	"math"

	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/internal/options"
	"github.com/arloliu/slumber/predict"
	"github.com/arloliu/slumber/regression"
	"github.com/arloliu/slumber/summary"
	"github.com/arloliu/slumber/transform"
)

// Plot names, used as output file names.
const (
	NameScatter = "scatter"
	NameTrend   = "trend"
	NameRibbon  = "ribbon"
)

// Layer names.
const (
	LayerObserved    = "observed"
	LayerHighlighted = "highlighted"
	LayerNames       = "names"
	LayerDraw        = "draw"
	LayerBaseline    = "baseline"
	LayerInterval    = "interval"
	LayerMedian      = "median"
)

// Palette.
const (
	ColorObserved  = "#1F2937"
	ColorHighlight = "#EF4444"
	ColorDraw      = "#4F46E5"
	ColorBaseline  = "#F59E0B"
	ColorInterval  = "#8B5CF6"
)

// DefaultDrawAlpha is the opacity of one posterior line on the trend plot.
const DefaultDrawAlpha = 0.05

var (
	brainAxis = Axis{Label: "Brain mass (kg)", Log: true}
	sleepAxis = Axis{Label: "Total sleep (hours)"}
	dayAxis   = Axis{Label: "Total sleep (hours)", Fixed: true, Min: 0, Max: transform.HoursPerDay}
)

func observed(frame *dataset.Frame) Layer {
	pts := make([]Point, 0, frame.Len())
	for _, r := range frame.Rows() {
		pts = append(pts, Point{X: r.BrainWt.Float64, Y: r.SleepTotal})
	}

	return Layer{
		Kind:   KindPoints,
		Name:   LayerObserved,
		Style:  Style{Color: ColorObserved, Alpha: 0.8, Size: 2.5},
		Points: pts,
	}
}

// Scatter plots sleep against brain mass and marks the highlighted species with
// a colored glyph and their name.
func Scatter(frame *dataset.Frame, highlighted []dataset.Row) *Plot {
	p := &Plot{
		Name:   NameScatter,
		Title:  "Sleep and brain mass of mammals",
		X:      brainAxis,
		Y:      sleepAxis,
		Layers: []Layer{observed(frame)},
	}
	if len(highlighted) == 0 {
		return p
	}

	pts := make([]Point, len(highlighted))
	names := make([]string, len(highlighted))
	for i, r := range highlighted {
		pts[i] = Point{X: r.BrainWt.Float64, Y: r.SleepTotal}
		names[i] = r.Name
	}
	p.Layers = append(p.Layers,
		Layer{Kind: KindPoints, Name: LayerHighlighted, Style: Style{Color: ColorHighlight, Alpha: 1, Size: 3.5}, Points: pts},
		Layer{Kind: KindLabels, Name: LayerNames, Style: Style{Color: ColorHighlight, Alpha: 1, Size: 9}, Points: pts, Labels: names},
	)

	return p
}

type trendConfig struct {
	baseline regression.Estimator
	alpha    float64
}

// TrendOption configures Trend.
type TrendOption = options.Option[*trendConfig]

// WithBaseline overlays the predictions of est along the grid.
func WithBaseline(est regression.Estimator) TrendOption {
	return options.NoError(func(c *trendConfig) {
		c.baseline = est
	})
}

// WithDrawAlpha sets the opacity of each posterior line.
func WithDrawAlpha(alpha float64) TrendOption {
	return options.New(func(c *trendConfig) error {
		if !(alpha > 0 && alpha <= 1) {
			return fmt.Errorf("plotspec: draw alpha must be in (0, 1], got %v", alpha)
		}
		c.alpha = alpha

		return nil
	})
}

// Trend draws one line per row of lin (predicted hours along the grid) over the
// observed data. The y axis is fixed to the 24 hour day unless a baseline
// overlay leaves it.
func Trend(frame *dataset.Frame, lin *predict.Draws, opts ...TrendOption) (*Plot, error) {
	cfg := trendConfig{alpha: DefaultDrawAlpha}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	grid := lin.Grid.Values()
	p := &Plot{
		Name:  NameTrend,
		Title: "Posterior mean sleep by brain mass",
		X:     brainAxis,
		Y:     dayAxis,
	}

	for i := range lin.NumDraws() {
		row := lin.Row(i)
		pts := make([]Point, len(grid))
		for j, x := range grid {
			pts[j] = Point{X: transform.Pow10(x), Y: row[j]}
		}
		p.Layers = append(p.Layers, Layer{
			Kind:   KindLine,
			Name:   LayerDraw,
			Style:  Style{Color: ColorDraw, Alpha: cfg.alpha, Size: 1},
			Points: pts,
		})
	}

	if cfg.baseline != nil {
		pts := make([]Point, len(grid))
		for j, x := range grid {
			h := cfg.baseline.Estimate(x)
			pts[j] = Point{X: transform.Pow10(x), Y: h}
			p.Y.Min = math.Min(p.Y.Min, h)
			p.Y.Max = math.Max(p.Y.Max, h)
		}
		p.Layers = append(p.Layers, Layer{
			Kind:   KindLine,
			Name:   LayerBaseline,
			Style:  Style{Color: ColorBaseline, Alpha: 1, Size: 2},
			Points: pts,
		})
	}

	p.Layers = append(p.Layers, observed(frame))

	return p, nil
}

// Ribbon shades the interval between the lower and upper quantile bands, draws
// the median line and overlays the observed data.
func Ribbon(frame *dataset.Frame, bands []summary.Band) *Plot {
	pts := make([]Point, len(bands))
	lower := make([]float64, len(bands))
	upper := make([]float64, len(bands))
	median := make([]Point, len(bands))
	for i, b := range bands {
		x := transform.Pow10(b.X)
		pts[i] = Point{X: x}
		lower[i] = b.Lower
		upper[i] = b.Upper
		median[i] = Point{X: x, Y: b.Median}
	}

	return &Plot{
		Name:  NameRibbon,
		Title: "Posterior predictive sleep by brain mass",
		X:     brainAxis,
		Y:     dayAxis,
		Layers: []Layer{
			{Kind: KindRibbon, Name: LayerInterval, Style: Style{Color: ColorInterval, Alpha: 0.3}, Points: pts, Lower: lower, Upper: upper},
			{Kind: KindLine, Name: LayerMedian, Style: Style{Color: ColorInterval, Alpha: 1, Size: 2}, Points: median},
			observed(frame),
		},
	}
}
