// Package pipeline provides the load → scene → render pipeline for papermap.
//
// The CLI uses this package for every non-interactive command, and the
// explorer uses the same option defaults, so a rendered file and the live
// map agree on geometry and styling.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a dataset file, skipping malformed entries
//  2. Scene: Feed the records into a [papermap.Map] sized to the output
//     frame, apply search, transform and hover, and take the scene
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Input:   "tsne=data/tsne_papers.json",
//	    Search:  "gaussian splatting",
//	    Formats: []string{"svg", "json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/papermap/pkg/cache"
	"github.com/matzehuels/papermap/pkg/errors"
	papio "github.com/matzehuels/papermap/pkg/io"
	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/papermap"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 800.0

	// DefaultPNGScale is the default raster scale for PNG output.
	DefaultPNGScale = 2.0

	// DefaultEngine draws the map with the built-in SVG writer.
	DefaultEngine = EngineNative
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Engine constants select how SVG (and PNG/PDF derived from it) is drawn.
const (
	EngineNative   = "native"
	EngineGraphviz = "graphviz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidEngines is the set of supported SVG engines.
var ValidEngines = map[string]bool{
	EngineNative:   true,
	EngineGraphviz: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the render pipeline.
type Options struct {
	// Load options
	Input string `json:"input"` // dataset path, optionally "name=path"

	// Scene options
	Width     float64         `json:"width,omitempty"`
	Height    float64         `json:"height,omitempty"`
	Search    string          `json:"search,omitempty"`
	Highlight []string        `json:"highlight,omitempty"` // explicit ids, merged with Search matches
	Transform *zoom.Transform `json:"transform,omitempty"`
	Hover     string          `json:"hover,omitempty"` // id whose tooltip is shown

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Engine   string   `json:"engine,omitempty"`
	Tooltips bool     `json:"tooltips,omitempty"`
	Labels   bool     `json:"labels,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`
	Title    string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Map    *papermap.Config `json:"-"`
	Cache  cache.Cache      `json:"-"` // PNG/PDF conversions; nil disables
	Logger *log.Logger      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the loaded dataset.
	Dataset *papio.Dataset

	// Scene is the snapshot the artifacts were drawn from.
	Scene papermap.Scene

	// Highlight is the effective highlight set.
	Highlight paper.HighlightSet

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records    int
	Skipped    int
	Marks      int
	Matches    int
	LoadTime   time.Duration
	SceneTime  time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that an engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid engine: %q (must be one of: native, graphviz)", engine)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForScene(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if _, err := papio.ParseSource(o.Input); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// SetSceneDefaults sets default values for scene construction.
func (o *Options) SetSceneDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Map == nil {
		cfg := papermap.DefaultConfig()
		o.Map = &cfg
	}
	o.setLogger()
}

// ValidateForScene validates and sets defaults for scene construction.
func (o *Options) ValidateForScene() error {
	o.SetSceneDefaults()
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid frame size %gx%g", o.Width, o.Height)
	}
	if o.Transform != nil && o.Transform.Scale != 0 && !o.Map.Extent.Contains(o.Transform.Scale) {
		return errors.New(errors.ErrCodeInvalidInput, "scale %g outside [%g, %g]",
			o.Transform.Scale, o.Map.Extent.Min, o.Map.Extent.Max)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateEngine(o.Engine)
}

// IsGraphviz returns true if SVG output is drawn by Graphviz.
func (o *Options) IsGraphviz() bool {
	return o.Engine == EngineGraphviz
}

// NeedsSVG returns true if any requested format is derived from SVG.
func (o *Options) NeedsSVG() bool {
	for _, f := range o.Formats {
		if f == FormatSVG || f == FormatPNG || f == FormatPDF {
			return true
		}
	}
	return false
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// String summarizes the options for log output.
func (o *Options) String() string {
	return fmt.Sprintf("input=%s size=%gx%g formats=%v engine=%s", o.Input, o.Width, o.Height, o.Formats, o.Engine)
}
