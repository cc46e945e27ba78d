package papermap

import (
	"time"

	"github.com/matzehuels/papermap/pkg/observability"
	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/tooltip"
	"github.com/matzehuels/papermap/pkg/viewport"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to [Opener].
type OpenerFunc func(url string) error

// Open calls f(url).
func (f OpenerFunc) Open(url string) error { return f(url) }

// Observer receives every published scene.
type Observer func(Scene)

// Option configures a [Map].
type Option func(*Map)

// WithOpener sets the handler for clicks on nodes with a URL.
func WithOpener(o Opener) Option { return func(m *Map) { m.opener = o } }

// WithHooks overrides the globally registered map hooks.
func WithHooks(h observability.MapHooks) Option { return func(m *Map) { m.hooks = h } }

// Map is the interactive paper map.
type Map struct {
	cfg    Config
	mapper viewport.Mapper
	zoom   *zoom.Controller
	opener Opener
	hooks  observability.MapHooks

	records   []paper.Record
	byID      map[paper.ID]int
	highlight paper.HighlightSet
	hover     *paper.ID
	tooltip   *Tooltip

	surface Surface
	window  viewport.Size
	pending bool

	// marks and order hold the last rendered pass. They are the reconcile
	// baseline and go stale while pending.
	marks map[paper.ID]Mark
	order []paper.ID

	observers []subscription
	nextSub   int
}

type subscription struct {
	id int
	fn Observer
}

// New creates a map with an identity transform and no data.
func New(cfg Config, opts ...Option) *Map {
	m := &Map{
		cfg:    cfg,
		mapper: viewport.NewMapper(cfg.Margin),
		zoom:   zoom.NewController(cfg.Extent),
		hooks:  observability.Map(),
		byID:   map[paper.ID]int{},
		marks:  map[paper.ID]Mark{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers fn for scene updates and returns a function that
// removes it.
func (m *Map) Subscribe(fn Observer) (cancel func()) {
	m.nextSub++
	id := m.nextSub
	m.observers = append(m.observers, subscription{id: id, fn: fn})
	return func() {
		for i, s := range m.observers {
			if s.id == id {
				m.observers = append(m.observers[:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// Transform returns the current pan/zoom transform.
func (m *Map) Transform() zoom.Transform { return m.zoom.Transform() }

// Hovered returns the active node, if any.
func (m *Map) Hovered() (paper.ID, bool) {
	if m.hover == nil {
		return "", false
	}
	return *m.hover, true
}

// Pending reports whether a render is waiting for a measurable surface.
func (m *Map) Pending() bool { return m.pending }

// Records returns the current dataset.
func (m *Map) Records() []paper.Record { return m.records }

// Highlight returns the current highlight set.
func (m *Map) Highlight() paper.HighlightSet { return m.highlight }

// SetRecords replaces the dataset. The transform is kept so switching
// datasets does not reset the view; hover and tooltip are dropped.
func (m *Map) SetRecords(records []paper.Record) {
	m.records = append([]paper.Record(nil), records...)
	m.byID = make(map[paper.ID]int, len(records))
	for i, r := range m.records {
		if _, dup := m.byID[r.ID]; !dup {
			m.byID[r.ID] = i
		}
	}
	m.setHover(nil)
	m.tooltip = nil
	m.refresh(false)
}

// SetHighlight replaces the highlight set and re-resolves every mark.
func (m *Map) SetHighlight(hl paper.HighlightSet) {
	m.highlight = hl
	m.refresh(false)
}

// Resize sets the surface and the enclosing window. A zero window is
// treated as the surface itself.
func (m *Map) Resize(s Surface, window viewport.Size) {
	if !window.Measurable() {
		window = viewport.Size{Width: s.Origin.X + s.Size.Width, Height: s.Origin.Y + s.Size.Height}
	}
	m.surface, m.window = s, window
	m.refresh(true)
}

// SetTransform restores a saved view.
func (m *Map) SetTransform(t zoom.Transform) {
	m.zoom.Set(t)
	m.refresh(true)
}

// Gesture feeds a pan/zoom gesture. Gestures that start inside the tooltip,
// carry a ctrl modifier or use a non-primary button are ignored. It reports
// whether the gesture was captured.
func (m *Map) Gesture(g zoom.Gesture) bool {
	_, ok := m.zoom.Handle(g, m.tooltipRegion())
	m.hooks.OnGesture(g.Kind.String(), ok)
	if !ok {
		return false
	}
	m.refresh(true)
	return true
}

// PointerEnter activates the node id. Entering the already active node is
// a no-op, so the tooltip is not re-placed while the pointer moves within it.
// Nothing is hoverable while a render is pending.
func (m *Map) PointerEnter(id paper.ID) {
	if m.pending || (m.hover != nil && *m.hover == id) {
		return
	}
	if _, ok := m.marks[id]; !ok {
		return
	}
	var d Diff
	if prev := m.hover; prev != nil {
		m.setHover(nil)
		if m.restyle(*prev) {
			d.Updated = append(d.Updated, *prev)
		}
	}
	m.setHover(&id)
	if m.restyle(id) {
		d.Updated = append(d.Updated, id)
	}
	m.placeTooltip()
	m.publish(d)
}

// PointerLeave deactivates id if it is the active node.
func (m *Map) PointerLeave(id paper.ID) {
	if m.hover == nil || *m.hover != id {
		return
	}
	m.setHover(nil)
	m.tooltip = nil
	var d Diff
	if m.restyle(id) {
		d.Updated = append(d.Updated, id)
	}
	m.publish(d)
}

// PointerMove hit-tests (x, y) and moves the hover to the node under it.
func (m *Map) PointerMove(x, y float64) {
	id, hit := m.HitTest(x, y)
	if prev, ok := m.Hovered(); ok && (!hit || prev != id) {
		m.PointerLeave(prev)
	}
	if hit {
		m.PointerEnter(id)
	}
}

// Click opens the URL of node id unless the click lands on the tooltip.
// It reports whether a URL was opened.
func (m *Map) Click(id paper.ID, x, y float64) (bool, error) {
	if m.pending {
		return false, nil
	}
	mk, ok := m.marks[id]
	if !ok || mk.URL == "" || m.opener == nil {
		return false, nil
	}
	if r := m.tooltipRegion(); r != nil && r.Contains(x, y) {
		return false, nil
	}
	if err := m.opener.Open(mk.URL); err != nil {
		return false, err
	}
	return true, nil
}

// HitTest returns the topmost node whose circle covers the surface point
// (x, y).
func (m *Map) HitTest(x, y float64) (paper.ID, bool) {
	if m.pending {
		return "", false
	}
	dx, dy := m.zoom.Transform().Invert(x, y)
	for i := len(m.order) - 1; i >= 0; i-- {
		mk := m.marks[m.order[i]]
		ex, ey := dx-mk.CX, dy-mk.CY
		if ex*ex+ey*ey <= mk.Radius*mk.Radius {
			return mk.ID, true
		}
	}
	return "", false
}

// Scene returns the current snapshot. While a render is pending the marks
// no longer match the inputs, so the scene carries none.
func (m *Map) Scene() Scene {
	s := Scene{
		Surface:   m.surface,
		Transform: m.zoom.Transform(),
		Marks:     []Mark{},
	}
	if m.pending {
		return s
	}
	for _, id := range m.order {
		s.Marks = append(s.Marks, m.marks[id])
	}
	if m.tooltip != nil {
		tt := *m.tooltip
		s.Tooltip = &tt
	}
	return s
}

// Render runs a render pass with the current inputs.
func (m *Map) Render() { m.refresh(false) }

// refresh renders, optionally re-places the tooltip, and publishes.
func (m *Map) refresh(place bool) {
	d, ok := m.render()
	if !ok {
		return
	}
	if place {
		m.placeTooltip()
	}
	m.publish(d)
}

// render reconciles the marks with the inputs. It reports false when the
// surface cannot be measured yet; the pass is retried on the next change.
func (m *Map) render() (Diff, bool) {
	if !m.surface.Size.Measurable() {
		m.pending = true
		m.hooks.OnRenderDeferred(m.surface.Size.Width, m.surface.Size.Height)
		return Diff{}, false
	}
	m.pending = false
	start := time.Now()

	next := make(map[paper.ID]Mark, len(m.records))
	order := make([]paper.ID, 0, len(m.records))
	skipped := 0
	for _, r := range m.records {
		if !r.HasPosition() {
			skipped++
			continue
		}
		if _, dup := next[r.ID]; dup {
			skipped++
			continue
		}
		next[r.ID] = m.markFor(r)
		order = append(order, r.ID)
	}

	d := reconcile(m.marks, m.order, next, order)
	m.marks, m.order = next, order
	if m.hover != nil {
		if _, ok := m.marks[*m.hover]; !ok {
			m.setHover(nil)
			m.tooltip = nil
		}
	}

	m.hooks.OnRender(len(order), skipped, time.Since(start))
	return d, true
}

func (m *Map) markFor(r paper.Record) Mark {
	p := m.mapper.Project(r.X, r.Y, m.surface.Size)
	return Mark{
		ID:     r.ID,
		CX:     p.X,
		CY:     p.Y,
		URL:    r.URL,
		Visual: m.cfg.Resolver.Resolve(r.ID, m.hover, m.highlight),
	}
}

// restyle re-resolves a single mark and reports whether it changed.
func (m *Map) restyle(id paper.ID) bool {
	mk, ok := m.marks[id]
	if !ok {
		return false
	}
	v := m.cfg.Resolver.Resolve(id, m.hover, m.highlight)
	if v == mk.Visual {
		return false
	}
	mk.Visual = v
	m.marks[id] = mk
	return true
}

func (m *Map) setHover(id *paper.ID) {
	if id == nil && m.hover == nil {
		return
	}
	m.hover = id
	if id == nil {
		m.hooks.OnHover("")
		return
	}
	m.hooks.OnHover(string(*id))
}

func (m *Map) placeTooltip() {
	if m.hover == nil {
		m.tooltip = nil
		return
	}
	mk, ok := m.marks[*m.hover]
	i, known := m.byID[mk.ID]
	if !ok || !known {
		m.setHover(nil)
		m.tooltip = nil
		return
	}
	rec := m.records[i]
	vm := tooltip.NewViewModel(rec, viewport.Point{X: mk.CX, Y: mk.CY})
	rect := m.cfg.Placer.Place(vm.AnchorX, vm.AnchorY, m.zoom.Transform(), m.surface.Origin, m.window)
	m.tooltip = &Tooltip{ViewModel: vm, Rect: rect}
}

// tooltipRegion returns the tooltip rectangle in surface coordinates, or nil
// when no tooltip is shown.
func (m *Map) tooltipRegion() zoom.Region {
	if m.tooltip == nil {
		return nil
	}
	return m.tooltip.Rect.Offset(-m.surface.Origin.X, -m.surface.Origin.Y)
}

func (m *Map) publish(d Diff) {
	if len(m.observers) == 0 || m.pending {
		return
	}
	s := m.Scene()
	s.Diff = d
	for _, o := range append([]subscription(nil), m.observers...) {
		o.fn(s)
	}
}
