package sink

import (
	"encoding/json"

	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/papermap"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	dataset string
	search  string
	matches paper.HighlightSet
	skipped int
}

// WithJSONDataset records the name of the rendered dataset.
func WithJSONDataset(name string) JSONOption { return func(r *jsonRenderer) { r.dataset = name } }

// WithJSONSearch records the search term and the ids it matched.
func WithJSONSearch(term string, hl paper.HighlightSet) JSONOption {
	return func(r *jsonRenderer) { r.search, r.matches = term, hl }
}

// WithJSONSkipped records how many input entries were left out.
func WithJSONSkipped(n int) JSONOption { return func(r *jsonRenderer) { r.skipped = n } }

type jsonOutput struct {
	Dataset   string            `json:"dataset,omitempty"`
	Width     float64           `json:"width"`
	Height    float64           `json:"height"`
	Transform jsonTransform     `json:"transform"`
	Search    string            `json:"search,omitempty"`
	Matches   []paper.ID        `json:"matches,omitempty"`
	Skipped   int               `json:"skipped,omitempty"`
	Marks     []papermap.Mark   `json:"marks"`
	Tooltip   *papermap.Tooltip `json:"tooltip,omitempty"`
}

type jsonTransform struct {
	zoom.Transform
	SVG string `json:"svg"`
}

// RenderJSON encodes the scene as indented JSON.
func RenderJSON(s papermap.Scene, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	marks := s.Marks
	if marks == nil {
		marks = []papermap.Mark{}
	}
	out := jsonOutput{
		Dataset:   r.dataset,
		Width:     s.Surface.Size.Width,
		Height:    s.Surface.Size.Height,
		Transform: jsonTransform{Transform: s.Transform, SVG: s.Transform.String()},
		Search:    r.search,
		Skipped:   r.skipped,
		Marks:     marks,
		Tooltip:   s.Tooltip,
	}
	if r.matches.Active() {
		out.Matches = r.matches.IDs()
	}
	return json.MarshalIndent(out, "", "  ")
}
