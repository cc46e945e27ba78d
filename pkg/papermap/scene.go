package papermap

import (
	"slices"

	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/styles"
	"github.com/matzehuels/papermap/pkg/tooltip"
	"github.com/matzehuels/papermap/pkg/viewport"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// Mark is the drawn circle of one record, positioned in the untransformed
// surface frame.
type Mark struct {
	ID  paper.ID `json:"id"`
	CX  float64  `json:"cx"`
	CY  float64  `json:"cy"`
	URL string   `json:"url,omitempty"`
	styles.Visual
}

// Tooltip is the visible info panel.
type Tooltip struct {
	tooltip.ViewModel
	Rect tooltip.Rect `json:"rect"` // window coordinates
}

// Surface is the drawing area: its size and its top-left corner inside the
// window.
type Surface struct {
	Origin viewport.Point
	Size   viewport.Size
}

// Diff lists the marks that changed in a render pass.
type Diff struct {
	Entered []paper.ID `json:"entered,omitempty"`
	Updated []paper.ID `json:"updated,omitempty"`
	Exited  []paper.ID `json:"exited,omitempty"`
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.Entered) == 0 && len(d.Updated) == 0 && len(d.Exited) == 0
}

// Scene is a snapshot of everything needed to draw the map.
type Scene struct {
	Surface   Surface        `json:"surface"`
	Transform zoom.Transform `json:"transform"`
	Marks     []Mark         `json:"marks"`
	Tooltip   *Tooltip       `json:"tooltip,omitempty"`
	Diff      Diff           `json:"-"`
}

// Mark returns the mark for id.
func (s Scene) Mark(id paper.ID) (Mark, bool) {
	i := slices.IndexFunc(s.Marks, func(m Mark) bool { return m.ID == id })
	if i < 0 {
		return Mark{}, false
	}
	return s.Marks[i], true
}

// reconcile compares two keyed mark sets. next is listed in draw order.
func reconcile(prev map[paper.ID]Mark, prevOrder []paper.ID, next map[paper.ID]Mark, nextOrder []paper.ID) Diff {
	var d Diff
	for _, id := range nextOrder {
		old, ok := prev[id]
		switch {
		case !ok:
			d.Entered = append(d.Entered, id)
		case old != next[id]:
			d.Updated = append(d.Updated, id)
		}
	}
	for _, id := range prevOrder {
		if _, ok := next[id]; !ok {
			d.Exited = append(d.Exited, id)
		}
	}
	return d
}
