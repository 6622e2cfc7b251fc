// Package render turns plotspec descriptions into image files.
package render

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/arloliu/slumber/format"
	"github.com/arloliu/slumber/internal/options"
	"github.com/arloliu/slumber/plotspec"
)

// Default image size.
const (
	DefaultWidth  = 7 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// Renderer draws a plot description to w.
type Renderer interface {
	Render(ctx context.Context, p *plotspec.Plot, w io.Writer) error
	// Format returns the image format written by Render.
	Format() format.PlotFormat
}

// GonumRenderer renders with gonum.org/v1/plot.
type GonumRenderer struct {
	format        format.PlotFormat
	width, height vg.Length
}

// Option configures a GonumRenderer.
type Option = options.Option[*GonumRenderer]

// WithFormat sets the output image format.
func WithFormat(f format.PlotFormat) Option {
	return options.New(func(r *GonumRenderer) error {
		if f.String() == "unknown" {
			return fmt.Errorf("render: unsupported format %s", f)
		}
		r.format = f

		return nil
	})
}

// WithSize sets the image size.
func WithSize(width, height vg.Length) Option {
	return options.New(func(r *GonumRenderer) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("render: size must be positive, got %v x %v", width, height)
		}
		r.width, r.height = width, height

		return nil
	})
}

// NewGonumRenderer creates a renderer writing SVG at the default size unless
// configured otherwise.
func NewGonumRenderer(opts ...Option) (*GonumRenderer, error) {
	r := &GonumRenderer{format: format.PlotSVG, width: DefaultWidth, height: DefaultHeight}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Format returns the image format.
func (r *GonumRenderer) Format() format.PlotFormat {
	return r.format
}

// Render draws p and writes the encoded image to w.
func (r *GonumRenderer) Render(ctx context.Context, p *plotspec.Plot, w io.Writer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	gp, err := r.build(ctx, p)
	if err != nil {
		return fmt.Errorf("render %s: %w", p.Name, err)
	}

	wt, err := gp.WriterTo(r.width, r.height, r.format.String())
	if err != nil {
		return fmt.Errorf("render %s: %w", p.Name, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", p.Name, err)
	}

	return nil
}

func (r *GonumRenderer) build(ctx context.Context, p *plotspec.Plot) (*plot.Plot, error) {
	gp := plot.New()
	gp.Title.Text = p.Title
	gp.X.Label.Text = p.X.Label
	gp.Y.Label.Text = p.Y.Label
	if p.X.Log {
		gp.X.Scale = plot.LogScale{}
		gp.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if p.Y.Log {
		gp.Y.Scale = plot.LogScale{}
		gp.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	gp.Add(plotter.NewGrid())

	for _, l := range p.Layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, err := layerColor(l.Style)
		if err != nil {
			return nil, err
		}

		plotters, err := layerPlotters(l, c)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		gp.Add(plotters...)
	}

	if p.X.Fixed {
		gp.X.Min, gp.X.Max = p.X.Min, p.X.Max
	}
	if p.Y.Fixed {
		gp.Y.Min, gp.Y.Max = p.Y.Min, p.Y.Max
	}

	return gp, nil
}

func layerPlotters(l plotspec.Layer, c color.NRGBA) ([]plot.Plotter, error) {
	switch l.Kind {
	case plotspec.KindPoints:
		xys := finiteXYs(l.Points)
		if len(xys) == 0 {
			return nil, nil
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = c
		s.GlyphStyle.Radius = vg.Points(l.Style.Size)
		s.GlyphStyle.Shape = draw.CircleGlyph{}

		return []plot.Plotter{s}, nil

	case plotspec.KindLine:
		xys := finiteXYs(l.Points)
		if len(xys) < 2 {
			return nil, nil
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(l.Style.Size)

		return []plot.Plotter{line}, nil

	case plotspec.KindRibbon:
		outline := ribbonOutline(l)
		if len(outline) < 3 {
			return nil, nil
		}
		poly, err := plotter.NewPolygon(outline)
		if err != nil {
			return nil, err
		}
		poly.Color = c
		poly.LineStyle.Width = 0

		return []plot.Plotter{poly}, nil

	case plotspec.KindLabels:
		var data plotter.XYLabels
		for i, pt := range l.Points {
			if finite(pt.X) && finite(pt.Y) {
				data.XYs = append(data.XYs, plotter.XY{X: pt.X, Y: pt.Y})
				data.Labels = append(data.Labels, l.Labels[i])
			}
		}
		if len(data.XYs) == 0 {
			return nil, nil
		}
		labels, err := plotter.NewLabels(data)
		if err != nil {
			return nil, err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = c
			if l.Style.Size > 0 {
				labels.TextStyle[i].Font.Size = vg.Points(l.Style.Size)
			}
		}

		return []plot.Plotter{labels}, nil

	default:
		return nil, fmt.Errorf("unknown layer kind %d", l.Kind)
	}
}

// ribbonOutline walks the upper bound left to right and the lower bound back,
// skipping grid points where either bound is missing.
func ribbonOutline(l plotspec.Layer) plotter.XYs {
	var upper, lower plotter.XYs
	for i, pt := range l.Points {
		if !finite(pt.X) || !finite(l.Lower[i]) || !finite(l.Upper[i]) {
			continue
		}
		upper = append(upper, plotter.XY{X: pt.X, Y: l.Upper[i]})
		lower = append(lower, plotter.XY{X: pt.X, Y: l.Lower[i]})
	}

	outline := make(plotter.XYs, 0, len(upper)+len(lower))
	outline = append(outline, upper...)
	for i := len(lower) - 1; i >= 0; i-- {
		outline = append(outline, lower[i])
	}

	return outline
}

func finiteXYs(pts []plotspec.Point) plotter.XYs {
	xys := make(plotter.XYs, 0, len(pts))
	for _, pt := range pts {
		if finite(pt.X) && finite(pt.Y) {
			xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
		}
	}

	return xys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// layerColor parses a #RRGGBB style color and applies its alpha.
func layerColor(s plotspec.Style) (color.NRGBA, error) {
	var c color.NRGBA
	if _, err := fmt.Sscanf(s.Color, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("render: invalid color %q: %w", s.Color, err)
	}

	alpha := s.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	c.A = uint8(math.Round(alpha * 255))

	return c, nil
}
