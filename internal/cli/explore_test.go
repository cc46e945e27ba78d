package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	papio "github.com/matzehuels/papermap/pkg/io"
	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/papermap"
)

type fakeOpener struct{ urls []string }

func (f *fakeOpener) Open(url string) error {
	f.urls = append(f.urls, url)
	return nil
}

func testCatalog() *papio.Catalog {
	return &papio.Catalog{Datasets: []*papio.Dataset{
		{Name: "tsne", Records: []paper.Record{
			{ID: "1", Title: "Gaussian Processes", Authors: "Ada", Session: "Poster 1", URL: "https://example.org/1", X: 0, Y: 0},
			{ID: "2", Title: "Neural Nets", Authors: "Bob", X: 1, Y: 1},
		}},
		{Name: "umap", Records: []paper.Record{
			{ID: "1", Title: "Gaussian Processes", Authors: "Ada", URL: "https://example.org/1", X: 1, Y: 0},
			{ID: "2", Title: "Neural Nets", Authors: "Bob", X: 0, Y: 1},
		}},
	}}
}

// newTestExplorer returns an explorer on a 100x40 terminal. The map area is
// 800x576 pixels starting at row 2, so record 1 of "tsne" is drawn in cell
// (6, 5) and record 2 in cell (93, 34).
func newTestExplorer(t *testing.T) (*explorer, *fakeOpener) {
	t.Helper()
	op := &fakeOpener{}
	e := newExplorer(papermap.DefaultConfig(), testCatalog(), 0, op)
	t.Cleanup(e.Close)
	e.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return e, op
}

func press(e *explorer, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		e.Update(msg)
	}
}

func TestExplorerResize(t *testing.T) {
	op := &fakeOpener{}
	e := newExplorer(papermap.DefaultConfig(), testCatalog(), 0, op)
	defer e.Close()

	if !e.m.Pending() {
		t.Fatal("map should wait for a window size")
	}
	if e.View() != "" {
		t.Error("View() should be empty before the first resize")
	}

	e.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if e.m.Pending() {
		t.Fatal("map still pending after resize")
	}
	if len(e.scene.Marks) != 2 {
		t.Fatalf("marks = %d, want 2", len(e.scene.Marks))
	}
	if i, ok := e.cells[cellPos{6, 5}]; !ok || e.scene.Marks[i].ID != "1" {
		t.Errorf("cell (6,5) = %v, %v; want mark 1", i, ok)
	}
	if i, ok := e.cells[cellPos{93, 34}]; !ok || e.scene.Marks[i].ID != "2" {
		t.Errorf("cell (93,34) = %v, %v; want mark 2", i, ok)
	}
}

func TestExplorerTooSmall(t *testing.T) {
	e, _ := newTestExplorer(t)
	e.Update(tea.WindowSizeMsg{Width: 100, Height: 4})
	if !e.m.Pending() {
		t.Fatal("map with no rows should be pending")
	}
	if e.status != "window too small" {
		t.Errorf("status = %q", e.status)
	}
	e.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if e.status != "" {
		t.Errorf("status after recovery = %q", e.status)
	}
}

func TestExplorerDatasetSwitchWhileTooSmall(t *testing.T) {
	e, op := newTestExplorer(t)
	e.Update(tea.WindowSizeMsg{Width: 100, Height: 4})
	if len(e.cells) != 0 {
		t.Errorf("cells while too small = %d, want 0", len(e.cells))
	}

	press(e, "d", "tab")
	e.Update(tea.MouseMsg{X: 6, Y: 5, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion})
	e.Update(tea.MouseMsg{X: 6, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	e.Update(tea.MouseMsg{X: 6, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if _, ok := e.m.Hovered(); ok {
		t.Error("nothing should be hovered while the map is pending")
	}
	if len(op.urls) != 0 {
		t.Errorf("opened %v while pending", op.urls)
	}

	e.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if e.current().Name != "umap" {
		t.Fatalf("dataset = %q, want umap", e.current().Name)
	}
	if len(e.scene.Marks) != 2 {
		t.Fatalf("marks after recovery = %d, want 2", len(e.scene.Marks))
	}
	press(e, "tab")
	if id, ok := e.m.Hovered(); !ok || e.scene.Tooltip == nil {
		t.Errorf("tab after recovery hovered %q, %v", id, ok)
	}
}

func TestExplorerKeyboardZoomAndPan(t *testing.T) {
	e, _ := newTestExplorer(t)

	press(e, "+")
	if got := e.m.Transform().Scale; got != zoomStep {
		t.Errorf("scale after + = %v, want %v", got, zoomStep)
	}
	press(e, "0")
	if got := e.m.Transform(); got.Scale != 1 || got.TranslateX != 0 || got.TranslateY != 0 {
		t.Errorf("transform after reset = %v", got)
	}

	press(e, "l")
	if got := e.m.Transform().TranslateX; got != -panStep {
		t.Errorf("translate x after l = %v, want %v", got, -panStep)
	}
	press(e, "j")
	if got := e.m.Transform().TranslateY; got != -panStep {
		t.Errorf("translate y after j = %v, want %v", got, -panStep)
	}
}

func TestExplorerCycleAndOpen(t *testing.T) {
	e, op := newTestExplorer(t)

	press(e, "tab")
	id, ok := e.m.Hovered()
	if !ok || id != "1" {
		t.Fatalf("hovered = %q, %v; want 1", id, ok)
	}
	if e.scene.Tooltip == nil {
		t.Fatal("tooltip should be shown for the hovered paper")
	}

	press(e, "enter")
	if len(op.urls) != 1 || op.urls[0] != "https://example.org/1" {
		t.Errorf("opened = %v", op.urls)
	}

	press(e, "tab")
	if id, _ := e.m.Hovered(); id != "2" {
		t.Errorf("hovered after second tab = %q, want 2", id)
	}
	press(e, "enter")
	if len(op.urls) != 1 {
		t.Errorf("paper without URL should not open, got %v", op.urls)
	}
	if e.status != "no link for this paper" {
		t.Errorf("status = %q", e.status)
	}

	press(e, "esc")
	if _, ok := e.m.Hovered(); ok {
		t.Error("esc should clear the hover")
	}
}

func TestExplorerSearch(t *testing.T) {
	e, _ := newTestExplorer(t)

	press(e, "/", "g", "a", "u", "s", "s", "enter")
	if e.searching {
		t.Fatal("enter should leave search mode")
	}
	if e.term != "gauss" {
		t.Errorf("term = %q", e.term)
	}
	hl := e.m.Highlight()
	if hl.Len() != 1 || !hl.Has("1") {
		t.Errorf("highlight = %v", hl.IDs())
	}

	// Cycling is restricted to matches.
	press(e, "tab", "tab")
	if id, _ := e.m.Hovered(); id != "1" {
		t.Errorf("hovered = %q, want 1", id)
	}

	mk, _ := e.scene.Mark("2")
	if mk.Opacity != 0.3 {
		t.Errorf("unmatched opacity = %v, want 0.3", mk.Opacity)
	}

	press(e, "esc")
	if e.m.Highlight().Active() {
		t.Error("esc should clear the search")
	}
}

func TestExplorerSearchCancel(t *testing.T) {
	e, _ := newTestExplorer(t)

	press(e, "/", "x", "esc")
	if e.searching || e.term != "" {
		t.Errorf("searching = %v, term = %q", e.searching, e.term)
	}
	if e.m.Highlight().Active() {
		t.Error("cancelled search should not highlight")
	}
}

func TestExplorerDatasetSwitchKeepsView(t *testing.T) {
	e, _ := newTestExplorer(t)

	press(e, "+", "tab")
	before := e.m.Transform()

	press(e, "d")
	if e.dataset != 1 {
		t.Fatalf("dataset = %d, want 1", e.dataset)
	}
	if got := e.m.Transform(); got != before {
		t.Errorf("transform = %v, want %v", got, before)
	}
	if _, ok := e.m.Hovered(); ok {
		t.Error("switching datasets should clear the hover")
	}
	if e.m.Records()[0].X != 1 {
		t.Error("map should show the second dataset")
	}

	press(e, "d")
	if e.dataset != 0 {
		t.Errorf("dataset = %d, want 0 after wrapping", e.dataset)
	}
}

func TestExplorerWheel(t *testing.T) {
	e, _ := newTestExplorer(t)

	e.Update(tea.MouseMsg{X: 50, Y: 20, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress, Ctrl: true})
	if got := e.m.Transform().Scale; got != 1 {
		t.Errorf("ctrl+wheel changed scale to %v", got)
	}

	e.Update(tea.MouseMsg{X: 50, Y: 20, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if got := e.m.Transform().Scale; got <= 1 {
		t.Errorf("wheel up scale = %v, want > 1", got)
	}
}

func TestExplorerDrag(t *testing.T) {
	e, op := newTestExplorer(t)

	e.Update(tea.MouseMsg{X: 10, Y: 10, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	e.Update(tea.MouseMsg{X: 12, Y: 10, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	e.Update(tea.MouseMsg{X: 12, Y: 10, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})

	if got := e.m.Transform().TranslateX; got != 2*cellWidth {
		t.Errorf("translate x = %v, want %v", got, 2*cellWidth)
	}
	if len(op.urls) != 0 {
		t.Errorf("drag should not open anything, got %v", op.urls)
	}
}

func TestExplorerSecondaryButtonRejected(t *testing.T) {
	e, _ := newTestExplorer(t)

	e.Update(tea.MouseMsg{X: 10, Y: 10, Button: tea.MouseButtonRight, Action: tea.MouseActionPress})
	e.Update(tea.MouseMsg{X: 14, Y: 12, Button: tea.MouseButtonRight, Action: tea.MouseActionMotion})

	if got := e.m.Transform(); got.TranslateX != 0 || got.TranslateY != 0 {
		t.Errorf("transform = %v, want identity", got)
	}
}

func TestExplorerMouseHoverAndClick(t *testing.T) {
	e, op := newTestExplorer(t)

	e.Update(tea.MouseMsg{X: 6, Y: 5, Action: tea.MouseActionMotion})
	if id, ok := e.m.Hovered(); !ok || id != "1" {
		t.Fatalf("hovered = %q, %v; want 1", id, ok)
	}
	if !strings.Contains(e.View(), "Gaussian") {
		t.Error("View() should show the tooltip title")
	}

	e.Update(tea.MouseMsg{X: 6, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	e.Update(tea.MouseMsg{X: 6, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if len(op.urls) != 1 {
		t.Errorf("click should open the paper, got %v", op.urls)
	}

	e.Update(tea.MouseMsg{X: 50, Y: 30, Action: tea.MouseActionMotion})
	if _, ok := e.m.Hovered(); ok {
		t.Error("moving to an empty cell should clear the hover")
	}
}

func TestExplorerTooltipKeepsHover(t *testing.T) {
	e, op := newTestExplorer(t)

	e.Update(tea.MouseMsg{X: 6, Y: 5, Action: tea.MouseActionMotion})
	if e.scene.Tooltip == nil {
		t.Fatal("expected a tooltip")
	}
	col, row, _, _ := tooltipCells(e.scene.Tooltip.Rect)

	e.Update(tea.MouseMsg{X: col + 1, Y: row + 1, Action: tea.MouseActionMotion})
	if _, ok := e.m.Hovered(); !ok {
		t.Error("pointer on the tooltip should keep the hover")
	}

	// A wheel over the tooltip is not a map gesture.
	e.Update(tea.MouseMsg{X: col + 1, Y: row + 1, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if got := e.m.Transform().Scale; got != 1 {
		t.Errorf("wheel over tooltip changed scale to %v", got)
	}

	e.Update(tea.MouseMsg{X: col + 1, Y: row + 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	e.Update(tea.MouseMsg{X: col + 1, Y: row + 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if len(op.urls) != 1 || op.urls[0] != "https://example.org/1" {
		t.Errorf("click on tooltip opened %v", op.urls)
	}
}

func TestTooltipCells(t *testing.T) {
	e, _ := newTestExplorer(t)
	e.Update(tea.MouseMsg{X: 6, Y: 5, Action: tea.MouseActionMotion})

	// Anchor (50, 82) in window pixels: right of the node, and below it
	// because there is no room above.
	col, row, w, h := tooltipCells(e.scene.Tooltip.Rect)
	if col != 8 || row != 6 || w != 38 || h != 13 {
		t.Errorf("tooltipCells = %d,%d,%d,%d; want 8,6,38,13", col, row, w, h)
	}
}

func TestDatasetListModel(t *testing.T) {
	m := NewDatasetListModel(testCatalog().Datasets)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(DatasetListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(DatasetListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor moved past the end: %d", m.Cursor)
	}

	if !strings.Contains(m.View(), "umap") {
		t.Error("View() should list dataset names")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(DatasetListModel)
	if m.Selected != 1 {
		t.Errorf("selected = %d, want 1", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}
