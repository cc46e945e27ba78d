// Package zoom holds the pan/zoom transform of the map and the controller
// that turns pointer gestures into transform updates.
//
// The transform is applied to the whole node layer as one affine mapping,
// translate(tx, ty) scale(k). Marks keep their data-frame coordinates, so
// handlers always see positions in the untransformed frame.
//
// The [Controller] is the only writer. Gestures compose with the current
// transform; scale is clamped to the [Extent] after every update while
// translation is left unbounded.
package zoom

import (
	"fmt"
	"math"
)

// Transform is the current pan/zoom state.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity returns the untransformed view.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a data-frame point to screen space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// Invert maps a screen point back to the data frame.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.TranslateX) / t.Scale, (y - t.TranslateY) / t.Scale
}

// String formats the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s, %s) scale(%s)",
		formatNum(t.TranslateX), formatNum(t.TranslateY), formatNum(t.Scale))
}

func formatNum(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.3f", f)
}

// Extent bounds the scale factor.
type Extent struct {
	Min float64 `json:"min" toml:"min" yaml:"min"`
	Max float64 `json:"max" toml:"max" yaml:"max"`
}

// DefaultExtent is the scale range of the map.
var DefaultExtent = Extent{Min: 0.5, Max: 10}

// Clamp restricts k to the extent. NaN maps to the lower bound.
func (e Extent) Clamp(k float64) float64 {
	if math.IsNaN(k) {
		return e.Min
	}
	return math.Max(e.Min, math.Min(e.Max, k))
}

// Valid reports whether the extent is a non-empty positive range.
func (e Extent) Valid() bool {
	return e.Min > 0 && e.Max >= e.Min
}

// Contains reports whether k lies inside the extent.
func (e Extent) Contains(k float64) bool {
	return k >= e.Min && k <= e.Max
}
