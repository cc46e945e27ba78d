// Package viewport maps normalized embedding coordinates onto the pixels of
// the drawing surface.
//
// The unit square is stretched over the surface with a fixed margin on all
// sides, so x=0 lands on the left margin and x=1 on the right one. The
// mapping is affine and therefore monotonic, which keeps hit-testing and
// tooltip anchoring stable across redraws.
package viewport

import "math"

// DefaultMargin is the padding between the surface edge and the unit square.
const DefaultMargin = 50.0

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

// Size is a surface or window extent in pixels.
type Size struct {
	Width, Height float64
}

// Measurable reports whether the size can be drawn into. A surface that is
// mounted but not yet laid out reports zero and must not be rendered.
func (s Size) Measurable() bool {
	return s.Width > 0 && s.Height > 0 &&
		!math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Mapper projects unit-square coordinates to surface pixels.
type Mapper struct {
	Margin float64
}

// NewMapper returns a mapper using the given margin.
func NewMapper(margin float64) Mapper {
	return Mapper{Margin: margin}
}

// MapX maps x in [0,1] onto [margin, width-margin].
func (m Mapper) MapX(x, width float64) float64 {
	return scale(x, m.Margin, width-m.Margin)
}

// MapY maps y in [0,1] onto [margin, height-margin].
func (m Mapper) MapY(y, height float64) float64 {
	return scale(y, m.Margin, height-m.Margin)
}

// Project maps both coordinates for a surface of the given size.
func (m Mapper) Project(x, y float64, s Size) Point {
	return Point{X: m.MapX(x, s.Width), Y: m.MapY(y, s.Height)}
}

func scale(v, lo, hi float64) float64 {
	return lo + v*(hi-lo)
}
