// Package tooltip builds the hover panel content and decides where the panel
// goes on screen.
//
// The anchor of a [ViewModel] is the hovered node's pixel position in the
// untransformed surface frame. [Placer.Place] re-projects it through the
// current pan/zoom transform into window coordinates and picks a side that
// keeps the panel on screen:
//
//   - horizontally the panel sits right of the node, or left of it when the
//     right side would run past the window edge;
//   - vertically it prefers the space above the node, falls back to below
//     when the top would be cut off, and returns to above when below would
//     overflow the bottom as well.
//
// The panel height is an estimate. When the window is smaller than the panel
// plus offsets on both sides of the node, some clipping remains.
package tooltip

import (
	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/viewport"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// Defaults for the panel geometry.
const (
	DefaultWidth  = 300.0
	DefaultHeight = 200.0
	DefaultOffset = 15.0
)

// ViewModel is the content of the panel for the hovered node.
type ViewModel struct {
	ID       paper.ID `json:"id"`
	Title    string   `json:"title"`
	Authors  string   `json:"authors"`
	Session  string   `json:"session"`
	Location string   `json:"location"`
	URL      string   `json:"url,omitempty"`
	AnchorX  float64  `json:"anchor_x"`
	AnchorY  float64  `json:"anchor_y"`
}

// NewViewModel captures a record and its untransformed pixel position.
func NewViewModel(r paper.Record, anchor viewport.Point) ViewModel {
	return ViewModel{
		ID:       r.ID,
		Title:    r.Title,
		Authors:  r.Authors,
		Session:  r.Session,
		Location: r.Location,
		URL:      r.URL,
		AnchorX:  anchor.X,
		AnchorY:  anchor.Y,
	}
}

// HasURL reports whether the panel shows a link.
func (v ViewModel) HasURL() bool { return v.URL != "" }

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Contains reports whether (x, y) lies inside the rectangle, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right() && y >= r.Top && y <= r.Bottom()
}

// Offset shifts the rectangle by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Placer computes panel positions.
type Placer struct {
	Width  float64 // panel width (its max-width)
	Height float64 // estimated panel height
	Offset float64 // gap between node and panel
}

// DefaultPlacer returns the standard panel geometry.
func DefaultPlacer() Placer {
	return Placer{Width: DefaultWidth, Height: DefaultHeight, Offset: DefaultOffset}
}

// Screen projects an untransformed anchor into window coordinates.
func Screen(anchorX, anchorY float64, t zoom.Transform, origin viewport.Point) viewport.Point {
	x, y := t.Apply(anchorX, anchorY)
	return viewport.Point{X: origin.X + x, Y: origin.Y + y}
}

// Place returns the panel rectangle in window coordinates for a node
// anchored at (anchorX, anchorY) on a surface whose top-left corner sits at
// origin inside a window of the given size.
func (p Placer) Place(anchorX, anchorY float64, t zoom.Transform, origin viewport.Point, window viewport.Size) Rect {
	s := Screen(anchorX, anchorY, t, origin)

	left := s.X + p.Offset
	if s.X+p.Offset+p.Width > window.Width {
		left = s.X - p.Width - p.Offset
	}

	above := s.Y - p.Height - p.Offset
	below := s.Y + p.Offset
	top := above
	if above < 0 {
		top = below
		if below+p.Height > window.Height {
			top = above
		}
	}

	return Rect{Left: left, Top: top, Width: p.Width, Height: p.Height}
}
