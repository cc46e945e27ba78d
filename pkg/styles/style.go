// Package styles derives the visual state of map nodes.
//
// A node's radius, fill and opacity depend on two outside facts: whether it
// is the hovered node and whether it belongs to the highlight set. Hover and
// search match share the same visual bucket (large red node). Opacity only
// tracks the search: matched nodes are opaque, others dimmed, and without an
// active search every node has the same default opacity. A hovered node that
// does not match an active search is therefore drawn large and red while
// staying dimmed.
package styles

import "github.com/matzehuels/papermap/pkg/paper"

// Palette holds the two node colors.
type Palette struct {
	Accent string `json:"accent" toml:"accent" yaml:"accent"` // hovered or matched
	Base   string `json:"base" toml:"base" yaml:"base"`       // everything else
}

// DefaultPalette uses the map's red/blue accents.
var DefaultPalette = Palette{Accent: "#ea4335", Base: "#4285f4"}

// Visual is the resolved appearance of one node.
type Visual struct {
	Radius  float64 `json:"r"`
	Fill    string  `json:"fill"`
	Opacity float64 `json:"opacity"`
}

// Resolver maps node state to a [Visual].
type Resolver struct {
	Palette        Palette
	BaseRadius     float64
	ActiveRadius   float64
	DefaultOpacity float64
	MatchOpacity   float64
	DimOpacity     float64
}

// DefaultResolver returns the standard node styling.
func DefaultResolver() Resolver {
	return Resolver{
		Palette:        DefaultPalette,
		BaseRadius:     4,
		ActiveRadius:   8,
		DefaultOpacity: 0.7,
		MatchOpacity:   1.0,
		DimOpacity:     0.3,
	}
}

// Resolve returns the visual state for id. hover is nil when no node is
// hovered.
func (r Resolver) Resolve(id paper.ID, hover *paper.ID, hl paper.HighlightSet) Visual {
	matched := hl.Has(id)
	active := matched || (hover != nil && *hover == id)

	v := Visual{Radius: r.BaseRadius, Fill: r.Palette.Base, Opacity: r.DefaultOpacity}
	if active {
		v.Radius = r.ActiveRadius
		v.Fill = r.Palette.Accent
	}
	if hl.Active() {
		v.Opacity = r.DimOpacity
		if matched {
			v.Opacity = r.MatchOpacity
		}
	}
	return v
}
