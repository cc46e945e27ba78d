package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/papermap/pkg/cache"
	papio "github.com/matzehuels/papermap/pkg/io"
	"github.com/matzehuels/papermap/pkg/observability"
	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/papermap"
	"github.com/matzehuels/papermap/pkg/render"
	"github.com/matzehuels/papermap/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func (r *Runner) Render(ctx context.Context, s papermap.Scene, ds *papio.Dataset, hl paper.HighlightSet, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	artifacts = make(map[string][]byte, len(opts.Formats))

	var svg []byte
	if opts.NeedsSVG() {
		svg, err = renderSVG(ctx, s, ds, opts)
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
	}

	for _, format := range opts.Formats {
		var data []byte
		var ferr error

		switch format {
		case FormatSVG:
			data = svg
		case FormatPNG:
			data, ferr = r.convert(ctx, opts.Cache, format, opts.PNGScale, svg, func() ([]byte, error) {
				return render.ToPNG(ctx, svg, opts.PNGScale)
			})
		case FormatPDF:
			data, ferr = r.convert(ctx, opts.Cache, format, 1, svg, func() ([]byte, error) {
				return render.ToPDF(ctx, svg)
			})
		case FormatJSON:
			data, ferr = sink.RenderJSON(s, jsonOptions(ds, hl, opts)...)
		case FormatDOT:
			data = []byte(sink.ToDOT(s, dotOptions(ds, opts)))
		default:
			ferr = fmt.Errorf("unsupported format: %s", format)
		}

		if ferr != nil {
			return nil, fmt.Errorf("render %s: %w", format, ferr)
		}
		r.Logger.Debug("rendered artifact", "format", format, "bytes", len(data))
		artifacts[format] = data
	}

	return artifacts, nil
}

// convert runs an rsvg-convert conversion through the cache. A nil cache or
// a failing cache read falls through to the conversion.
func (r *Runner) convert(ctx context.Context, c cache.Cache, format string, scale float64, svg []byte, fn func() ([]byte, error)) ([]byte, error) {
	if c == nil {
		return fn()
	}
	key := cache.ConvertKey(format, scale, svg)
	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		r.Logger.Debug("conversion cache hit", "format", format)
		return data, nil
	} else if err != nil {
		r.Logger.Warn("conversion cache read failed", "error", err)
	}

	data, err := fn()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		r.Logger.Warn("conversion cache write failed", "error", err)
	}
	return data, nil
}

func renderSVG(ctx context.Context, s papermap.Scene, ds *papio.Dataset, opts Options) ([]byte, error) {
	if opts.IsGraphviz() {
		return sink.RenderDOT(ctx, sink.ToDOT(s, dotOptions(ds, opts)))
	}
	return sink.RenderSVG(s, svgOptions(ds, opts)...), nil
}

func svgOptions(ds *papio.Dataset, opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithPlacer(opts.Map.Placer),
		sink.WithResolver(opts.Map.Resolver),
	}
	if opts.Tooltips && ds != nil {
		svgOpts = append(svgOpts, sink.WithTooltips(ds.Records))
	}
	title := opts.Title
	if title == "" && ds != nil {
		title = ds.Name
	}
	if title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(title))
	}
	return svgOpts
}

func jsonOptions(ds *papio.Dataset, hl paper.HighlightSet, opts Options) []sink.JSONOption {
	jsonOpts := []sink.JSONOption{sink.WithJSONSearch(opts.Search, hl)}
	if ds != nil {
		jsonOpts = append(jsonOpts, sink.WithJSONDataset(ds.Name), sink.WithJSONSkipped(len(ds.Skipped)))
	}
	return jsonOpts
}

func dotOptions(ds *papio.Dataset, opts Options) sink.DOTOptions {
	dotOpts := sink.DOTOptions{Labels: opts.Labels}
	if opts.Tooltips && ds != nil {
		dotOpts.Titles = make(map[string]string, len(ds.Records))
		for _, rec := range ds.Records {
			dotOpts.Titles[string(rec.ID)] = rec.Title
		}
	}
	return dotOpts
}
