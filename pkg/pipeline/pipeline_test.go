package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/papermap/pkg/cache"
	"github.com/matzehuels/papermap/pkg/errors"
	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/zoom"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) should return INVALID_FORMAT, got %v", tt.format, err)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateEngine(t *testing.T) {
	tests := []struct {
		engine  string
		wantErr bool
	}{
		{"native", false},
		{"graphviz", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateEngine(tt.engine)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEngine(%q) error = %v, wantErr %v", tt.engine, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing input should fail")
	}

	opts = Options{Input: "=papers.json"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Empty dataset name should fail")
	}

	opts = Options{Input: "tsne=papers.json"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid input should pass: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Logger default should be set")
	}
}

func TestOptionsValidateForScene(t *testing.T) {
	opts := Options{Transform: &zoom.Transform{Scale: 20}}
	if err := opts.ValidateForScene(); err == nil {
		t.Error("Scale outside extent should fail")
	}

	opts = Options{Width: -1}
	if err := opts.ValidateForScene(); err == nil {
		t.Error("Negative width should fail")
	}

	opts = Options{Transform: &zoom.Transform{Scale: 2, TranslateX: 10}}
	if err := opts.ValidateForScene(); err != nil {
		t.Errorf("Valid transform should pass: %v", err)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Input: "papers.json"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	width, engine, formats := opts.Width, opts.Engine, len(opts.Formats)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Width != width {
		t.Error("Width changed on second call")
	}
	if opts.Engine != engine {
		t.Error("Engine changed on second call")
	}
	if len(opts.Formats) != formats {
		t.Error("Formats changed on second call")
	}
}

func TestSetSceneDefaults(t *testing.T) {
	opts := Options{}
	opts.SetSceneDefaults()

	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %f, got %f", DefaultWidth, opts.Width)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height should be %f, got %f", DefaultHeight, opts.Height)
	}
	if opts.Map == nil || opts.Map.Margin != 50 {
		t.Errorf("Map config should default to margin 50, got %+v", opts.Map)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Engine != DefaultEngine {
		t.Errorf("Engine should be %s, got %s", DefaultEngine, opts.Engine)
	}
	if opts.PNGScale != DefaultPNGScale {
		t.Errorf("PNGScale should be %f, got %f", DefaultPNGScale, opts.PNGScale)
	}
}

func TestOptionsNeedsSVG(t *testing.T) {
	tests := []struct {
		formats []string
		want    bool
	}{
		{[]string{"json"}, false},
		{[]string{"json", "dot"}, false},
		{[]string{"pdf"}, true},
		{[]string{"json", "png"}, true},
	}
	for _, tt := range tests {
		opts := Options{Formats: tt.formats}
		if got := opts.NeedsSVG(); got != tt.want {
			t.Errorf("NeedsSVG(%v) = %v, want %v", tt.formats, got, tt.want)
		}
	}
}

func TestHighlight(t *testing.T) {
	records := []paper.Record{
		{ID: "1", Title: "Gaussian Splatting"},
		{ID: "2", Title: "NeRF", Authors: "Gaussian, C."},
		{ID: "3", Title: "Diffusion"},
	}

	hl := Highlight(records, "gaussian", []string{"3"})
	if hl.Len() != 3 {
		t.Errorf("Highlight len = %d, want 3", hl.Len())
	}

	if Highlight(records, "  ", nil).Active() {
		t.Error("Blank search without ids should not be active")
	}
}

const dataset = `[
  {"id": 1, "title": "Gaussian Splatting", "authors": "A", "url": "https://example.com/1", "x": 0, "y": 0},
  {"id": 2, "title": "Neural Radiance Fields", "authors": "B", "x": 1, "y": 1},
  {"id": 3, "title": "broken", "x": "left", "y": 0.5}
]`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.json")
	if err := os.WriteFile(path, []byte(dataset), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunnerExecute(t *testing.T) {
	path := writeDataset(t)
	r := NewRunner(nil)

	result, err := r.Execute(context.Background(), Options{
		Input:    "tsne=" + path,
		Width:    400,
		Height:   300,
		Search:   "gaussian",
		Hover:    "2",
		Formats:  []string{"svg", "json", "dot"},
		Tooltips: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Dataset.Name != "tsne" {
		t.Errorf("dataset name = %q", result.Dataset.Name)
	}
	if result.Stats.Records != 2 || result.Stats.Skipped != 1 || result.Stats.Marks != 2 || result.Stats.Matches != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}

	m1, _ := result.Scene.Mark("1")
	if m1.CX != 50 || m1.CY != 50 || m1.Radius != 8 || m1.Opacity != 1 {
		t.Errorf("mark 1 = %+v", m1)
	}
	m2, _ := result.Scene.Mark("2")
	if m2.CX != 350 || m2.CY != 250 || m2.Radius != 8 || m2.Opacity != 0.3 {
		t.Errorf("hovered unmatched mark 2 = %+v", m2)
	}
	if result.Scene.Tooltip == nil || result.Scene.Tooltip.ID != "2" {
		t.Fatal("hovered node should carry a tooltip")
	}

	for _, f := range []string{"svg", "json", "dot"} {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !strings.Contains(string(result.Artifacts["svg"]), "<title>tsne</title>") {
		t.Error("svg should be titled after the dataset")
	}

	var dump struct {
		Dataset string   `json:"dataset"`
		Search  string   `json:"search"`
		Matches []string `json:"matches"`
		Skipped int      `json:"skipped"`
	}
	if err := json.Unmarshal(result.Artifacts["json"], &dump); err != nil {
		t.Fatal(err)
	}
	if dump.Dataset != "tsne" || dump.Search != "gaussian" || len(dump.Matches) != 1 || dump.Skipped != 1 {
		t.Errorf("json dump = %+v", dump)
	}
}

func TestRunnerExecuteTransform(t *testing.T) {
	path := writeDataset(t)
	r := NewRunner(nil)

	result, err := r.Execute(context.Background(), Options{
		Input:     path,
		Width:     400,
		Height:    300,
		Transform: &zoom.Transform{Scale: 2, TranslateX: -50, TranslateY: 10},
		Formats:   []string{"json"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Scene.Transform; got.Scale != 2 || got.TranslateX != -50 || got.TranslateY != 10 {
		t.Errorf("transform = %+v", got)
	}
	if result.Dataset.Name != "papers" {
		t.Errorf("bare path should name the dataset after the file, got %q", result.Dataset.Name)
	}
}

func TestRunnerExecuteMissingFile(t *testing.T) {
	r := NewRunner(nil)
	_, err := r.Execute(context.Background(), Options{Input: filepath.Join(t.TempDir(), "nope.json")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRunnerExecuteInvalidFormat(t *testing.T) {
	r := NewRunner(nil)
	_, err := r.Execute(context.Background(), Options{Input: "papers.json", Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestRunnerConvertCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil)
	svg := []byte("<svg/>")

	calls := 0
	convert := func() ([]byte, error) {
		calls++
		return []byte("png"), nil
	}

	for i := 0; i < 2; i++ {
		data, err := r.convert(ctx, c, FormatPNG, 2, svg, convert)
		if err != nil || string(data) != "png" {
			t.Fatalf("convert #%d = %q, %v", i, data, err)
		}
	}
	if calls != 1 {
		t.Errorf("conversion ran %d times, want 1", calls)
	}

	// A different scale is a different artifact.
	if _, err := r.convert(ctx, c, FormatPNG, 3, svg, convert); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("conversion ran %d times, want 2", calls)
	}
}

func TestRunnerConvertNoCache(t *testing.T) {
	r := NewRunner(nil)
	calls := 0
	for i := 0; i < 2; i++ {
		_, _ = r.convert(context.Background(), nil, FormatPDF, 1, []byte("<svg/>"), func() ([]byte, error) {
			calls++
			return nil, nil
		})
	}
	if calls != 2 {
		t.Errorf("conversion ran %d times, want 2 without a cache", calls)
	}
}
