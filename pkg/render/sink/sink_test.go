package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/papermap"
	"github.com/matzehuels/papermap/pkg/viewport"
	"github.com/matzehuels/papermap/pkg/zoom"
)

func testScene(t *testing.T) (papermap.Scene, []paper.Record) {
	t.Helper()
	records := []paper.Record{
		{ID: "1", Title: "Neural Fields & <Friends>", Authors: "A. Author", Session: "Oral 1", Location: "Hall A", URL: "https://example.com/1", X: 0.25, Y: 0.5},
		{ID: "2", Title: "Point Clouds", Authors: "B. Author", X: 0.75, Y: 0.5},
	}
	m := papermap.New(papermap.DefaultConfig())
	m.SetRecords(records)
	m.SetHighlight(paper.NewHighlightSet("1"))
	m.Resize(papermap.Surface{Size: viewport.Size{Width: 800, Height: 600}}, viewport.Size{})
	return m.Scene(), records
}

func TestRenderSVG(t *testing.T) {
	s, records := testScene(t)
	svg := string(RenderSVG(s, WithTooltips(records), WithTitle("papers")))

	for _, want := range []string{
		`viewBox="0 0 800.0 600.0"`,
		`<title>papers</title>`,
		`<g class="nodes" transform="translate(0, 0) scale(1)">`,
		`<a href="https://example.com/1" target="_blank">`,
		`id="node-1"`,
		`fill="#ea4335" opacity="1"`,
		`fill="#4285f4" opacity="0.3"`,
		`class="tooltip" data-for="1" visibility="hidden"`,
		`Neural Fields &amp; &lt;Friends&gt;`,
		`Session: Oral 1`,
		`<script type="text/javascript">`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Count(svg, "<circle") != 2 {
		t.Errorf("want 2 circles, got %d", strings.Count(svg, "<circle"))
	}
	if strings.Contains(svg, "%!") {
		t.Error("SVG contains a formatting error")
	}
}

func TestRenderSVGWithoutTooltips(t *testing.T) {
	s, _ := testScene(t)
	svg := string(RenderSVG(s))
	if strings.Contains(svg, `class="tooltip"`) || strings.Contains(svg, "<script") {
		t.Error("tooltips should only be embedded with WithTooltips")
	}
}

func TestRenderSVGVisibleTooltip(t *testing.T) {
	records := []paper.Record{{ID: "7", Title: "Hovered", X: 0.5, Y: 0.5}}
	m := papermap.New(papermap.DefaultConfig())
	m.SetRecords(records)
	m.Resize(papermap.Surface{Size: viewport.Size{Width: 800, Height: 600}}, viewport.Size{})
	m.PointerEnter("7")

	svg := string(RenderSVG(m.Scene(), WithTooltips(records)))
	if !strings.Contains(svg, `data-for="7" visibility="visible"`) {
		t.Error("hovered node's tooltip should be visible")
	}
	if strings.Count(svg, `data-for="7"`) != 1 {
		t.Error("hovered node should have exactly one tooltip")
	}
}

func TestRenderSVGTooltipLink(t *testing.T) {
	s, records := testScene(t)
	svg := string(RenderSVG(s, WithTooltips(records)))

	link := `<a href="https://example.com/1" target="_blank"><text class="link"`
	if strings.Count(svg, link) != 1 {
		t.Errorf("want one live tooltip link for node 1, got %d", strings.Count(svg, link))
	}
	if !strings.Contains(svg, ".tooltip a { pointer-events: auto; }") {
		t.Error("tooltip link should receive pointer events")
	}
	if strings.Count(svg, "Open paper") != 1 {
		t.Error("node without a URL should not get a link line")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want []string
	}{
		{"", 10, nil},
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.in, tt.n)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	s, _ := testScene(t)
	data, err := RenderJSON(s, WithJSONDataset("tsne"), WithJSONSearch("neural", paper.NewHighlightSet("1")), WithJSONSkipped(3))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var out struct {
		Dataset   string `json:"dataset"`
		Width     float64
		Transform struct {
			Scale float64 `json:"scale"`
			SVG   string  `json:"svg"`
		} `json:"transform"`
		Matches []string `json:"matches"`
		Skipped int      `json:"skipped"`
		Marks   []struct {
			ID      string  `json:"id"`
			CX      float64 `json:"cx"`
			R       float64 `json:"r"`
			Opacity float64 `json:"opacity"`
		} `json:"marks"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Dataset != "tsne" || out.Width != 800 || out.Skipped != 3 {
		t.Errorf("header = %+v", out)
	}
	if out.Transform.Scale != 1 || out.Transform.SVG != "translate(0, 0) scale(1)" {
		t.Errorf("transform = %+v", out.Transform)
	}
	if len(out.Matches) != 1 || out.Matches[0] != "1" {
		t.Errorf("matches = %v", out.Matches)
	}
	if len(out.Marks) != 2 || out.Marks[0].CX != 225 || out.Marks[0].R != 8 || out.Marks[1].Opacity != 0.3 {
		t.Errorf("marks = %+v", out.Marks)
	}
}

func TestRenderJSONEmptyScene(t *testing.T) {
	data, err := RenderJSON(papermap.Scene{Transform: zoom.Identity()})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"marks": []`) {
		t.Errorf("empty scene should encode marks as [], got %s", data)
	}
}

func TestToDOT(t *testing.T) {
	s, _ := testScene(t)
	dot := ToDOT(s, DOTOptions{Labels: true, Titles: map[string]string{"2": "Point Clouds"}})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`"1" [pos="225.00,300.00!"`,
		`fillcolor="#ea4335ff"`,
		`fillcolor="#4285f44d"`,
		`xlabel="1"`,
		`tooltip="Point Clouds"`,
		`URL="https://example.com/1"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestWithAlpha(t *testing.T) {
	tests := []struct {
		color   string
		opacity float64
		want    string
	}{
		{"#4285f4", 0.7, "#4285f4b3"},
		{"#ea4335", 1, "#ea4335ff"},
		{"#ea4335", 2, "#ea4335ff"},
		{"red", 0.5, "red"},
	}
	for _, tt := range tests {
		if got := withAlpha(tt.color, tt.opacity); got != tt.want {
			t.Errorf("withAlpha(%q, %v) = %q, want %q", tt.color, tt.opacity, got, tt.want)
		}
	}
}
