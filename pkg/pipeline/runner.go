package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	papio "github.com/matzehuels/papermap/pkg/io"
	"github.com/matzehuels/papermap/pkg/observability"
	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/papermap"
	"github.com/matzehuels/papermap/pkg/viewport"
)

// Runner executes the pipeline.
//
// The Runner is stateless except for the logger - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → scene → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	ds, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Dataset = ds
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Records = len(ds.Records)
	result.Stats.Skipped = len(ds.Skipped)

	r.Logger.Info("loaded dataset",
		"name", ds.Name,
		"records", len(ds.Records),
		"skipped", len(ds.Skipped),
		"duration", result.Stats.LoadTime)

	// Stage 2: Scene
	sceneStart := time.Now()
	scene, hl, err := r.BuildScene(ds.Records, opts)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	result.Scene = scene
	result.Highlight = hl
	result.Stats.SceneTime = time.Since(sceneStart)
	result.Stats.Marks = len(scene.Marks)
	result.Stats.Matches = hl.Len()

	r.Logger.Debug("built scene",
		"marks", len(scene.Marks),
		"matches", hl.Len(),
		"transform", scene.Transform,
		"duration", result.Stats.SceneTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, scene, ds, hl, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the dataset named by opts.Input.
func (r *Runner) Load(ctx context.Context, opts Options) (*papio.Dataset, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	src, err := papio.ParseSource(opts.Input)
	if err != nil {
		return nil, err
	}

	ds, err := papio.ImportJSON(src.Path)
	records, skipped := 0, 0
	if ds != nil {
		ds.Name = src.Name
		records, skipped = len(ds.Records), len(ds.Skipped)
	}
	observability.Pipeline().OnLoadComplete(ctx, src.Path, records, skipped, err)
	if err != nil {
		return nil, err
	}

	for _, s := range ds.Skipped {
		r.Logger.Debug("skipped entry", "index", s.Index, "reason", s.Reason)
	}
	if len(ds.Skipped) > 0 {
		r.Logger.Warn("skipped malformed entries", "count", len(ds.Skipped), "dataset", ds.Name)
	}
	return ds, nil
}

// BuildScene lays the records out on a frame of opts.Width × opts.Height
// and returns the resulting scene together with the effective highlight.
func (r *Runner) BuildScene(records []paper.Record, opts Options) (papermap.Scene, paper.HighlightSet, error) {
	if err := opts.ValidateForScene(); err != nil {
		return papermap.Scene{}, paper.HighlightSet{}, err
	}
	r.applyLogger(&opts)

	hl := Highlight(records, opts.Search, opts.Highlight)
	if opts.Search != "" && !hl.Active() {
		r.Logger.Warn("search matched nothing", "term", opts.Search)
	}

	m := papermap.New(*opts.Map)
	m.Resize(papermap.Surface{Size: viewport.Size{Width: opts.Width, Height: opts.Height}}, viewport.Size{})
	if m.Pending() {
		return papermap.Scene{}, hl, fmt.Errorf("frame %gx%g cannot be measured", opts.Width, opts.Height)
	}
	if opts.Transform != nil {
		m.SetTransform(*opts.Transform)
	}
	m.SetRecords(records)
	m.SetHighlight(hl)

	if opts.Hover != "" {
		id := paper.ID(opts.Hover)
		m.PointerEnter(id)
		if _, ok := m.Hovered(); !ok {
			r.Logger.Warn("hover id not on map", "id", opts.Hover)
		}
	}
	return m.Scene(), hl, nil
}

// Highlight combines search matches with explicitly listed ids.
func Highlight(records []paper.Record, term string, ids []string) paper.HighlightSet {
	matched := paper.Search(records, term).IDs()
	for _, id := range ids {
		matched = append(matched, paper.ID(id))
	}
	return paper.NewHighlightSet(matched...)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
