package zoom

import "math"

// wheelRate converts pixel scroll deltas into an exponent of two.
const wheelRate = 0.002

// Controller interprets gestures into transform updates. It is the single
// writer of the transform and is not safe for concurrent use.
type Controller struct {
	t      Transform
	extent Extent
}

// NewController returns a controller at the identity transform.
func NewController(extent Extent) *Controller {
	if !extent.Valid() {
		extent = DefaultExtent
	}
	return &Controller{t: Identity(), extent: extent}
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Extent returns the scale bounds.
func (c *Controller) Extent() Extent { return c.extent }

// Set replaces the transform, clamping its scale. This is an explicit
// re-initialization and is never triggered by data changes.
func (c *Controller) Set(t Transform) Transform {
	if t.Scale == 0 || math.IsNaN(t.Scale) {
		t.Scale = 1
	}
	t.Scale = c.extent.Clamp(t.Scale)
	c.t = t
	return c.t
}

// Reset returns to the identity transform.
func (c *Controller) Reset() Transform {
	c.t = Identity()
	return c.t
}

// Capturable reports whether g is a plain pan/zoom gesture that starts
// outside the excluded region. A nil region never excludes.
func Capturable(g Gesture, excluded Region) bool {
	if g.Ctrl || g.Button != 0 {
		return false
	}
	if excluded != nil && excluded.Contains(g.X, g.Y) {
		return false
	}
	return true
}

// Handle applies g to the current transform. It reports false and leaves
// the transform unchanged when the gesture is not captured.
func (c *Controller) Handle(g Gesture, excluded Region) (Transform, bool) {
	if !Capturable(g, excluded) {
		return c.t, false
	}

	// Pan pointers may be infinite (keyboard pans sit outside every
	// region); zoom pivots must be real points.
	switch g.Kind {
	case Pan:
		if !finite(g.DX, g.DY) {
			return c.t, false
		}
		c.t.TranslateX += g.DX
		c.t.TranslateY += g.DY
	case Wheel:
		if !finite(g.X, g.Y, g.DeltaY) {
			return c.t, false
		}
		c.zoomAbout(g.X, g.Y, math.Pow(2, -g.DeltaY*wheelRate))
	case Pinch:
		if g.Factor <= 0 || !finite(g.X, g.Y, g.Factor) {
			return c.t, false
		}
		c.zoomAbout(g.X, g.Y, g.Factor)
	default:
		return c.t, false
	}
	return c.t, true
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// zoomAbout scales by factor while keeping the data point under (px, py)
// fixed on screen.
func (c *Controller) zoomAbout(px, py, factor float64) {
	dx, dy := c.t.Invert(px, py)
	c.t.Scale = c.extent.Clamp(c.t.Scale * factor)
	c.t.TranslateX = px - dx*c.t.Scale
	c.t.TranslateY = py - dy*c.t.Scale
}
