// Package plotspec describes the three sleep plots as renderer-agnostic data.
//
// A Plot is an ordered list of layers drawn bottom to top over two axes. The
// builders in this package only map data to visual channels; turning a Plot into
// an image is the job of a render.Renderer.
package plotspec

import "fmt"

// Kind identifies the mark a layer draws.
type Kind int

const (
	// KindPoints draws one glyph per point.
	KindPoints Kind = iota + 1
	// KindLine draws one polyline through the points.
	KindLine
	// KindRibbon fills the area between Lower and Upper along the points' X.
	KindRibbon
	// KindLabels draws Labels[i] next to point i.
	KindLabels
)

var kindNames = map[Kind]string{
	KindPoints: "points",
	KindLine:   "line",
	KindRibbon: "ribbon",
	KindLabels: "labels",
}

// String returns the string representation of the layer kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// Point is one data point in plot units.
type Point struct {
	X, Y float64
}

// Style holds the rendering hints of a layer.
type Style struct {
	// Color is a #RRGGBB hex color.
	Color string
	// Alpha is the opacity in [0, 1].
	Alpha float64
	// Size is the glyph radius, line width or font size in points.
	Size float64
}

// Layer is one mark drawn over the axes.
type Layer struct {
	Kind  Kind
	Name  string
	Style Style
	// Points holds the data for every kind. For ribbons only X is used.
	Points []Point
	// Lower and Upper are the ribbon bounds, one per point.
	Lower, Upper []float64
	// Labels are the texts of a labels layer, one per point.
	Labels []string
}

// Validate checks that the per-point slices of the layer agree in length.
func (l Layer) Validate() error {
	switch l.Kind {
	case KindPoints, KindLine:
	case KindRibbon:
		if len(l.Lower) != len(l.Points) || len(l.Upper) != len(l.Points) {
			return fmt.Errorf("plotspec: ribbon %q has %d points, %d lower and %d upper bounds",
				l.Name, len(l.Points), len(l.Lower), len(l.Upper))
		}
	case KindLabels:
		if len(l.Labels) != len(l.Points) {
			return fmt.Errorf("plotspec: labels %q has %d points and %d labels", l.Name, len(l.Points), len(l.Labels))
		}
	default:
		return fmt.Errorf("plotspec: layer %q has unknown kind %d", l.Name, l.Kind)
	}

	return nil
}

// Axis describes one axis.
type Axis struct {
	Label string
	// Log selects a base-10 logarithmic scale. Data stay in original units.
	Log bool
	// Fixed pins the axis to [Min, Max] instead of fitting the data.
	Fixed    bool
	Min, Max float64
}

// Plot is a complete plot description.
type Plot struct {
	// Name is the base file name of the rendered plot.
	Name   string
	Title  string
	X, Y   Axis
	Layers []Layer
}

// Validate checks every layer.
func (p *Plot) Validate() error {
	for _, l := range p.Layers {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	if p.X.Fixed && !(p.X.Min < p.X.Max) {
		return fmt.Errorf("plotspec: x axis range [%v, %v] is empty", p.X.Min, p.X.Max)
	}
	if p.Y.Fixed && !(p.Y.Min < p.Y.Max) {
		return fmt.Errorf("plotspec: y axis range [%v, %v] is empty", p.Y.Min, p.Y.Max)
	}

	return nil
}

// Layer returns the first layer with the given name, or nil.
func (p *Plot) Layer(name string) *Layer {
	for i := range p.Layers {
		if p.Layers[i].Name == name {
			return &p.Layers[i]
		}
	}

	return nil
}
