package zoom

// Kind identifies a gesture.
type Kind int

const (
	// Pan drags the layer by (DX, DY).
	Pan Kind = iota
	// Wheel zooms by a scroll delta about the pointer.
	Wheel
	// Pinch zooms by a multiplicative factor about the pointer.
	Pinch
)

func (k Kind) String() string {
	switch k {
	case Pan:
		return "pan"
	case Wheel:
		return "wheel"
	case Pinch:
		return "pinch"
	}
	return "unknown"
}

// Gesture is a pointer gesture on the drawing surface. X and Y are the
// pointer position in surface pixels.
type Gesture struct {
	Kind   Kind
	X, Y   float64
	DX, DY float64 // pan delta
	DeltaY float64 // wheel delta in pixels; positive scrolls down (zooms out)
	Factor float64 // pinch scale factor
	Ctrl   bool    // ctrl modifier held
	Button int     // 0 for the primary button
}

// PanBy builds a drag gesture.
func PanBy(dx, dy float64) Gesture {
	return Gesture{Kind: Pan, DX: dx, DY: dy}
}

// WheelAt builds a scroll gesture at the pointer position.
func WheelAt(x, y, deltaY float64) Gesture {
	return Gesture{Kind: Wheel, X: x, Y: y, DeltaY: deltaY}
}

// PinchAt builds a pinch gesture about the given point.
func PinchAt(x, y, factor float64) Gesture {
	return Gesture{Kind: Pinch, X: x, Y: y, Factor: factor}
}

// Region is a hit region that swallows gestures, typically the tooltip.
type Region interface {
	Contains(x, y float64) bool
}
