package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	papio "github.com/matzehuels/papermap/pkg/io"
	"github.com/matzehuels/papermap/pkg/pipeline"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// renderFlags holds the command-line flags for the render command that do
// not map directly onto pipeline.Options.
type renderFlags struct {
	output   string  // output file (single dataset/format) or base path
	formats  string  // comma-separated output formats
	scale    float64 // initial zoom
	tx, ty   float64 // initial pan
	open     bool    // open the first SVG in the browser
	noCache  bool    // skip the conversion cache
	cacheURL string  // shared Redis cache
}

// renderCommand creates the render command for generating map files.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	opts := pipeline.Options{Tooltips: true}

	cmd := &cobra.Command{
		Use:   "render [dataset...]",
		Short: "Render datasets to SVG, PNG, PDF, JSON or DOT",
		Long: `Render one or more paper datasets as scatter maps.

Each dataset is a JSON array of {id, title, authors, session, location, url, x, y}
records with x and y normalized to [0,1]. Give several embeddings of the same
papers as name=path pairs to render them side by side:

  papermap render tsne=tsne_papers.json umap=umap_papers.json -f svg,png

Malformed records (missing or non-numeric coordinates) are skipped and
reported. The SVG output is interactive: hover a node for its details and
click it to open the paper.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if flags.scale != 1 || flags.tx != 0 || flags.ty != 0 {
				opts.Transform = &zoom.Transform{Scale: flags.scale, TranslateX: flags.tx, TranslateY: flags.ty}
			}
			return c.runRender(cmd.Context(), args, opts, flags)
		},
	}

	// Output flags
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single dataset and format), base path, or - for stdout")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&flags.open, "open", false, "open the rendered SVG in the browser")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "always re-run rsvg-convert for PNG/PDF")
	cmd.Flags().StringVar(&flags.cacheURL, "cache-url", os.Getenv(cacheURLEnv), "redis:// URL of a shared conversion cache (env "+cacheURLEnv+")")

	// Scene flags
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "frame width (default from config)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "frame height (default from config)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "highlight papers whose title or authors contain this term")
	cmd.Flags().StringSliceVar(&opts.Highlight, "highlight", nil, "highlight papers by id (comma-separated)")
	cmd.Flags().StringVar(&opts.Hover, "hover", "", "show the tooltip of this paper id")
	cmd.Flags().Float64Var(&flags.scale, "zoom", 1, "initial zoom factor")
	cmd.Flags().Float64Var(&flags.tx, "pan-x", 0, "initial horizontal pan in pixels")
	cmd.Flags().Float64Var(&flags.ty, "pan-y", 0, "initial vertical pan in pixels")

	// Render flags
	cmd.Flags().StringVar(&opts.Engine, "engine", pipeline.DefaultEngine, "SVG engine: native (interactive), graphviz (static)")
	cmd.Flags().BoolVar(&opts.Tooltips, "tooltips", opts.Tooltips, "embed hover tooltips in SVG output")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "label nodes with their id (graphviz)")
	cmd.Flags().Float64Var(&opts.PNGScale, "png-scale", pipeline.DefaultPNGScale, "PNG resolution multiplier")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title (default: dataset name)")

	return cmd
}

// runRender renders every dataset and writes its artifacts.
func (c *CLI) runRender(ctx context.Context, inputs []string, opts pipeline.Options, flags renderFlags) error {
	logger := loggerFromContext(ctx)
	c.setCLIDefaults(&opts)

	sources := make([]papio.Source, len(inputs))
	for i, in := range inputs {
		src, err := papio.ParseSource(in)
		if err != nil {
			return err
		}
		sources[i] = src
	}
	if flags.output == "-" && (len(sources) > 1 || len(opts.Formats) > 1) {
		return fmt.Errorf("stdout output needs a single dataset and format")
	}

	opts.Cache = c.newCache(ctx, flags.noCache, flags.cacheURL)
	defer opts.Cache.Close()

	runner := c.newRunner()
	var written []string
	for _, src := range sources {
		srcOpts := opts
		srcOpts.Input = src.Name + "=" + src.Path

		prog := newProgress(logger)
		result, err := c.executeWithSpinner(ctx, runner, srcOpts)
		if err != nil {
			return fmt.Errorf("%s: %w", src.Name, err)
		}
		prog.done(fmt.Sprintf("Rendered %s", src.Name))

		for _, format := range srcOpts.Formats {
			path := outputPath(flags.output, src, len(sources) > 1, format, len(srcOpts.Formats) > 1)
			if err := writeArtifact(path, result.Artifacts[format]); err != nil {
				return err
			}
			if path != "-" {
				written = append(written, path)
			}
		}

		if flags.output != "-" {
			printSuccess("%s", StyleTitle.Render(src.Name))
			printStats(result.Stats.Marks, result.Stats.Skipped, result.Stats.Matches, srcOpts.Search != "" || len(srcOpts.Highlight) > 0)
		}
	}

	for _, path := range written {
		printFile(path)
	}

	if flags.open {
		if i := slices.IndexFunc(written, func(p string) bool { return strings.HasSuffix(p, ".svg") }); i >= 0 {
			abs, err := filepath.Abs(written[i])
			if err != nil {
				return err
			}
			if err := c.Opener.Open("file://" + abs); err != nil {
				printWarning("could not open browser: %v", err)
			}
		}
	}
	return nil
}

// executeWithSpinner runs the pipeline, showing a spinner for the slow
// rsvg-convert formats.
func (c *CLI) executeWithSpinner(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	if !slices.Contains(opts.Formats, pipeline.FormatPNG) && !slices.Contains(opts.Formats, pipeline.FormatPDF) {
		return runner.Execute(ctx, opts)
	}

	spinner := newSpinnerTo(ctx, os.Stderr, "Rasterizing with rsvg-convert...", orbitFrames)
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return nil, err
	}
	spinner.Stop()
	return result, nil
}

// outputPath derives the file for one dataset/format pair.
//
// Without output, files land next to the dataset. A single dataset and
// format writes to output as given. Otherwise output is a base path and the
// dataset name and/or format are appended: base_name.format.
func outputPath(output string, src papio.Source, multiDataset bool, format string, multiFormat bool) string {
	if output == "-" {
		return output
	}
	if output == "" {
		return basePath("", src.Path) + "." + format
	}
	if !multiDataset && !multiFormat {
		return output
	}
	base := basePath(output, src.Path)
	if multiDataset {
		base += "_" + src.Name
	}
	return base + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
