package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	papio "github.com/matzehuels/papermap/pkg/io"
	"github.com/matzehuels/papermap/pkg/observability"
	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/papermap"
	"github.com/matzehuels/papermap/pkg/styles"
	"github.com/matzehuels/papermap/pkg/tooltip"
	"github.com/matzehuels/papermap/pkg/viewport"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// A terminal cell stands for a block of surface pixels. Cells are about
// twice as tall as they are wide.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	headerRows = 2
	footerRows = 2

	panStep    = 40.0  // pixels per arrow key
	zoomStep   = 1.25  // pinch factor per +/- key
	wheelDelta = 100.0 // pixels per wheel notch
)

var (
	exploreHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreTooltipStyle = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236"))
	exploreLinkStyle    = StyleLink.Background(lipgloss.Color("236"))
)

// exploreCommand creates the explore command for the terminal map.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		search  string
		dataset string
	)

	cmd := &cobra.Command{
		Use:   "explore [dataset...]",
		Short: "Explore datasets interactively in the terminal",
		Long: `Explore one or more paper datasets as an interactive map in the terminal.

Mouse: move to hover a paper, drag to pan, scroll to zoom, click to open.
Keys:  arrows/hjkl pan, +/- zoom, 0 reset view, tab/shift+tab cycle papers,
       / search, esc clear, d next dataset, enter open paper, q quit.

With several datasets (e.g. tsne=... umap=...) 'd' switches between them
while keeping the current view.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args, dataset, search)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "initial search term")
	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset to start with (default: ask when several are given)")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, inputs []string, start, search string) error {
	logger := loggerFromContext(ctx)

	cat, err := papio.LoadCatalog(inputs)
	if err != nil {
		return err
	}
	for _, ds := range cat.Datasets {
		if len(ds.Skipped) > 0 {
			logger.Warn("skipped malformed entries", "dataset", ds.Name, "count", len(ds.Skipped))
		}
	}

	idx := 0
	switch {
	case start != "":
		idx = indexOfDataset(cat, start)
		if idx < 0 {
			return fmt.Errorf("unknown dataset %q (have %s)", start, strings.Join(cat.Names(), ", "))
		}
	case len(cat.Datasets) > 1:
		final, err := tea.NewProgram(NewDatasetListModel(cat.Datasets), tea.WithContext(ctx)).Run()
		if err != nil {
			return err
		}
		fm, ok := final.(DatasetListModel)
		if !ok || fm.Selected < 0 {
			printInfo("No dataset selected")
			return nil
		}
		idx = fm.Selected
	}

	e := newExplorer(c.Config.Map(), cat, idx, c.Opener)
	defer e.Close()
	if search != "" {
		e.applySearch(search)
	}

	p := tea.NewProgram(e, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

func indexOfDataset(cat *papio.Catalog, name string) int {
	for i, ds := range cat.Datasets {
		if ds.Name == name {
			return i
		}
	}
	return -1
}

// =============================================================================
// explorer - bubbletea host for a papermap.Map
// =============================================================================

type cellPos struct{ col, row int }

type dragState struct {
	startX, startY float64
	lastX, lastY   float64
	moved          bool
}

// explorer draws the map into a grid of terminal cells. Rows are counted
// from the top of the terminal; the map occupies the rows between header
// and footer.
type explorer struct {
	m       *papermap.Map
	opener  papermap.Opener
	cancel  func()
	catalog *papio.Catalog
	dataset int

	scene papermap.Scene
	cells map[cellPos]int // index into scene.Marks, topmost wins
	looks map[styles.Visual]lipgloss.Style
	base  float64 // radius of an inactive mark

	cols, rows int
	searching  bool
	query      string
	term       string
	status     string
	drag       *dragState
}

func newExplorer(cfg papermap.Config, cat *papio.Catalog, dataset int, opener papermap.Opener) *explorer {
	e := &explorer{
		opener:  opener,
		catalog: cat,
		dataset: dataset,
		looks:   map[styles.Visual]lipgloss.Style{},
		base:    cfg.Resolver.BaseRadius,
		status:  "waiting for window size",
	}
	// Log lines would tear the alternate screen.
	e.m = papermap.New(cfg, papermap.WithOpener(opener), papermap.WithHooks(observability.NoopMapHooks{}))
	e.cancel = e.m.Subscribe(e.onScene)
	e.m.SetRecords(e.current().Records)
	return e
}

// Close detaches the explorer from its map.
func (e *explorer) Close() { e.cancel() }

func (e *explorer) current() *papio.Dataset { return e.catalog.Datasets[e.dataset] }

func (e *explorer) onScene(s papermap.Scene) {
	e.scene = s
	e.cells = make(map[cellPos]int, len(s.Marks))
	for i, mk := range s.Marks {
		x, y := s.Transform.Apply(mk.CX, mk.CY)
		if x < 0 || y < 0 {
			continue
		}
		e.cells[cellPos{int(x / cellWidth), int(y/cellHeight) + headerRows}] = i
	}
}

func (e *explorer) mapRows() int { return max(e.rows-headerRows-footerRows, 0) }

func (e *explorer) resize(cols, rows int) {
	e.cols, e.rows = cols, rows
	surface := papermap.Surface{
		Origin: viewport.Point{Y: headerRows * cellHeight},
		Size:   viewport.Size{Width: float64(cols) * cellWidth, Height: float64(e.mapRows()) * cellHeight},
	}
	e.m.Resize(surface, viewport.Size{Width: float64(cols) * cellWidth, Height: float64(rows) * cellHeight})
	if e.m.Pending() {
		e.onScene(e.m.Scene())
		e.status = "window too small"
	} else if e.status == "window too small" || e.status == "waiting for window size" {
		e.status = ""
	}
}

// toSurface converts a terminal cell to the surface pixel at its center.
func toSurface(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * cellWidth, (float64(row-headerRows) + 0.5) * cellHeight
}

// focus is the point keyboard zoom is anchored at: the hovered paper, or
// the middle of the map area. The tooltip is offset from its anchor, so the
// hovered paper never lies inside it.
func (e *explorer) focus() (float64, float64) {
	if id, ok := e.m.Hovered(); ok {
		if mk, ok := e.scene.Mark(id); ok {
			return e.scene.Transform.Apply(mk.CX, mk.CY)
		}
	}
	return float64(e.cols) * cellWidth / 2, float64(e.mapRows()) * cellHeight / 2
}

func (e *explorer) Init() tea.Cmd { return nil }

func (e *explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if e.searching {
			return e, e.updateSearch(msg)
		}
		return e, e.updateKey(msg)
	case tea.MouseMsg:
		e.updateMouse(msg)
	}
	return e, nil
}

func (e *explorer) updateKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "left", "h":
		e.keyGesture(zoom.PanBy(panStep, 0))
	case "right", "l":
		e.keyGesture(zoom.PanBy(-panStep, 0))
	case "up", "k":
		e.keyGesture(zoom.PanBy(0, panStep))
	case "down", "j":
		e.keyGesture(zoom.PanBy(0, -panStep))
	case "+", "=":
		x, y := e.focus()
		e.keyGesture(zoom.PinchAt(x, y, zoomStep))
	case "-", "_":
		x, y := e.focus()
		e.keyGesture(zoom.PinchAt(x, y, 1/zoomStep))
	case "0":
		e.m.SetTransform(zoom.Identity())
	case "tab":
		e.cycle(1)
	case "shift+tab":
		e.cycle(-1)
	case "esc":
		if id, ok := e.m.Hovered(); ok {
			e.m.PointerLeave(id)
		}
		e.applySearch("")
	case "/":
		e.searching = true
		e.query = e.term
	case "d":
		e.nextDataset()
	case "enter", "o":
		if id, ok := e.m.Hovered(); ok {
			mk, _ := e.scene.Mark(id)
			x, y := e.scene.Transform.Apply(mk.CX, mk.CY)
			e.click(id, x, y)
		}
	}
	return nil
}

// keyGesture feeds a keyboard gesture. A pan has no pointer position, so it
// is placed where no tooltip region can contain it.
func (e *explorer) keyGesture(g zoom.Gesture) {
	if g.Kind == zoom.Pan {
		g.X, g.Y = math.Inf(-1), math.Inf(-1)
	}
	e.m.Gesture(g)
}

func (e *explorer) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEnter:
		e.searching = false
		e.applySearch(e.query)
	case tea.KeyEsc:
		e.searching = false
	case tea.KeyBackspace:
		if rs := []rune(e.query); len(rs) > 0 {
			e.query = string(rs[:len(rs)-1])
		}
	case tea.KeySpace:
		e.query += " "
	case tea.KeyRunes:
		e.query += string(msg.Runes)
	}
	return nil
}

func (e *explorer) applySearch(term string) {
	e.term = strings.TrimSpace(term)
	hl := paper.Search(e.current().Records, e.term)
	e.m.SetHighlight(hl)
	switch {
	case e.term == "":
		e.status = ""
	case hl.Active():
		e.status = fmt.Sprintf("%d matches for %q", hl.Len(), e.term)
	default:
		e.status = fmt.Sprintf("no matches for %q", e.term)
	}
}

// cycle moves the hover to the next mark, or the next match while a search
// is active.
func (e *explorer) cycle(step int) {
	var ids []paper.ID
	hl := e.m.Highlight()
	for _, mk := range e.scene.Marks {
		if !hl.Active() || hl.Has(mk.ID) {
			ids = append(ids, mk.ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	next := 0
	if step < 0 {
		next = len(ids) - 1
	}
	if cur, ok := e.m.Hovered(); ok {
		for i, id := range ids {
			if id == cur {
				next = (i + step + len(ids)) % len(ids)
				break
			}
		}
	}
	e.m.PointerEnter(ids[next])
}

func (e *explorer) nextDataset() {
	if len(e.catalog.Datasets) < 2 {
		e.status = "only one dataset loaded"
		return
	}
	e.dataset = (e.dataset + 1) % len(e.catalog.Datasets)
	e.m.SetRecords(e.current().Records)
	term := e.term
	e.applySearch(term)
	if term == "" {
		e.status = "switched to " + e.current().Name
	}
}

func (e *explorer) click(id paper.ID, x, y float64) {
	opened, err := e.m.Click(id, x, y)
	switch {
	case err != nil:
		e.status = "open failed: " + err.Error()
	case opened:
		mk, _ := e.scene.Mark(id)
		e.status = "opened " + mk.URL
	default:
		e.status = "no link for this paper"
	}
}

// openTooltipLink follows the link shown in the tooltip.
func (e *explorer) openTooltipLink() {
	tt := e.scene.Tooltip
	if tt == nil || !tt.HasURL() || e.opener == nil {
		return
	}
	if err := e.opener.Open(tt.URL); err != nil {
		e.status = "open failed: " + err.Error()
		return
	}
	e.status = "opened " + tt.URL
}

func (e *explorer) inTooltip(col, row int) bool {
	if e.scene.Tooltip == nil {
		return false
	}
	c0, r0, w, h := tooltipCells(e.scene.Tooltip.Rect)
	return col >= c0 && col < c0+w && row >= r0 && row < r0+h
}

func (e *explorer) updateMouse(msg tea.MouseMsg) {
	x, y := toSurface(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		delta := -wheelDelta
		if msg.Button == tea.MouseButtonWheelDown {
			delta = wheelDelta
		}
		g := zoom.WheelAt(x, y, delta)
		g.Ctrl = msg.Ctrl
		e.m.Gesture(g)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		e.drag = &dragState{startX: x, startY: y, lastX: x, lastY: y}

	case msg.Action == tea.MouseActionPress:
		g := zoom.Gesture{Kind: zoom.Pan, X: x, Y: y, Button: int(msg.Button), Ctrl: msg.Ctrl}
		e.m.Gesture(g)

	case msg.Action == tea.MouseActionMotion && e.drag != nil:
		g := zoom.PanBy(x-e.drag.lastX, y-e.drag.lastY)
		g.X, g.Y, g.Ctrl = e.drag.startX, e.drag.startY, msg.Ctrl
		if e.m.Gesture(g) {
			e.drag.moved = true
		}
		e.drag.lastX, e.drag.lastY = x, y

	case msg.Action == tea.MouseActionMotion:
		e.hoverCell(msg.X, msg.Y)

	case msg.Action == tea.MouseActionRelease:
		drag := e.drag
		e.drag = nil
		if drag == nil || drag.moved {
			return
		}
		if e.inTooltip(msg.X, msg.Y) {
			e.openTooltipLink()
			return
		}
		if i, ok := e.cells[cellPos{msg.X, msg.Y}]; ok {
			e.click(e.scene.Marks[i].ID, x, y)
		}
	}
}

// hoverCell moves the hover to the mark drawn in the cell. The tooltip
// covers the marks beneath it and keeps the hover while the pointer is on it.
func (e *explorer) hoverCell(col, row int) {
	if e.inTooltip(col, row) {
		return
	}
	i, hit := e.cells[cellPos{col, row}]
	if cur, ok := e.m.Hovered(); ok && (!hit || e.scene.Marks[i].ID != cur) {
		e.m.PointerLeave(cur)
	}
	if hit {
		e.m.PointerEnter(e.scene.Marks[i].ID)
	}
}

// =============================================================================
// View
// =============================================================================

func (e *explorer) View() string {
	if e.cols == 0 {
		return ""
	}
	var b strings.Builder

	name := e.current().Name
	if n := len(e.catalog.Datasets); n > 1 {
		name = fmt.Sprintf("%s (%d/%d)", name, e.dataset+1, n)
	}
	b.WriteString(exploreHeaderStyle.Render("papermap · "+name) + "  " + StyleDim.Render(e.scene.Transform.String()))
	b.WriteString("\n")
	switch {
	case e.searching:
		b.WriteString(StyleHighlight.Render("/ "+e.query) + "█")
	case e.term != "":
		b.WriteString(StyleDim.Render("search: ") + StyleHighlight.Render(e.term))
	default:
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d papers", len(e.scene.Marks))))
	}
	b.WriteString("\n")

	tip := e.tooltipLines()
	for row := headerRows; row < headerRows+e.mapRows(); row++ {
		b.WriteString(e.renderRow(row, tip))
		b.WriteString("\n")
	}

	b.WriteString(StyleValue.Render(e.status))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows pan · +/- zoom · 0 reset · tab cycle · / search · d dataset · ⏎ open · q quit"))
	return b.String()
}

// renderRow draws one terminal row of the map area, with the tooltip on top.
func (e *explorer) renderRow(row int, tip map[int]tooltipRow) string {
	var b strings.Builder
	t, hasTip := tip[row]
	for col := 0; col < e.cols; col++ {
		if hasTip && col == t.col {
			b.WriteString(t.text)
			col += t.width - 1
			continue
		}
		i, ok := e.cells[cellPos{col, row}]
		if !ok {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(e.glyph(e.scene.Marks[i]))
	}
	return b.String()
}

func (e *explorer) glyph(mk papermap.Mark) string {
	st, ok := e.looks[mk.Visual]
	if !ok {
		st = lipgloss.NewStyle().Foreground(lipgloss.Color(mk.Fill)).Faint(mk.Opacity < 0.5)
		e.looks[mk.Visual] = st
	}
	g := "•"
	if mk.Radius > e.base {
		g = "●"
	}
	return st.Render(g)
}

type tooltipRow struct {
	col   int
	width int
	text  string
}

// tooltipCells converts a window-pixel rectangle to terminal cells.
func tooltipCells(r tooltip.Rect) (col, row, width, height int) {
	col = int(math.Floor(r.Left / cellWidth))
	row = int(math.Floor(r.Top / cellHeight))
	width = int(math.Ceil(r.Width / cellWidth))
	height = int(math.Ceil(r.Height / cellHeight))
	return col, row, width, height
}

// tooltipLines lays out the tooltip box, keyed by terminal row and clipped
// to the map area.
func (e *explorer) tooltipLines() map[int]tooltipRow {
	tt := e.scene.Tooltip
	if tt == nil {
		return nil
	}
	col, row, w, h := tooltipCells(tt.Rect)
	if col < 0 {
		w += col
		col = 0
	}
	w = min(w, e.cols-col)
	if w < 6 || h < 3 {
		return nil
	}
	inner := w - 4

	var content []string
	wrap := lipgloss.NewStyle().Width(inner)
	content = append(content, strings.Split(wrap.Bold(true).Render(tt.Title), "\n")...)
	content = append(content, strings.Split(wrap.Render(tt.Authors), "\n")...)
	if tt.Session != "" {
		content = append(content, "Session: "+tt.Session)
	}
	if tt.Location != "" {
		content = append(content, "Location: "+tt.Location)
	}

	lines := make(map[int]tooltipRow, h)
	for i := 0; i < h; i++ {
		r := row + i
		if r < headerRows || r >= headerRows+e.mapRows() {
			continue
		}
		var text string
		switch {
		case i == 0:
			text = exploreTooltipStyle.Render("╭" + strings.Repeat("─", w-2) + "╮")
		case i == h-1:
			text = exploreTooltipStyle.Render("╰" + strings.Repeat("─", w-2) + "╯")
		case i == h-2 && tt.HasURL():
			text = exploreTooltipStyle.Render("│ ") + exploreLinkStyle.Render(fit("⏎ open paper", inner)) + exploreTooltipStyle.Render(" │")
		case i-1 < len(content):
			text = exploreTooltipStyle.Render("│ " + fit(content[i-1], inner) + " │")
		default:
			text = exploreTooltipStyle.Render("│ " + strings.Repeat(" ", inner) + " │")
		}
		lines[r] = tooltipRow{col: col, width: w, text: text}
	}
	return lines
}

// fit pads or cuts s to exactly n cells.
func fit(s string, n int) string {
	s = strings.TrimRight(s, " ")
	if lipgloss.Width(s) > n {
		s = truncate(s, n)
	}
	return s + strings.Repeat(" ", max(0, n-lipgloss.Width(s)))
}
