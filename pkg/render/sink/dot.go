package sink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/papermap/pkg/papermap"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Labels prints each node's id next to its circle.
	Labels bool
	// Titles maps node ids to hover text in the rendered SVG.
	Titles map[string]string
}

// ToDOT converts a scene to Graphviz DOT with every node pinned at its
// on-screen position. Positions are in points with y flipped, since
// Graphviz puts the origin at the bottom left.
func ToDOT(s papermap.Scene, opts DOTOptions) string {
	h := s.Surface.Size.Height
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%.2f,%.2f\";\n", s.Surface.Size.Width, h)
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, penwidth=0, label=\"\", fontsize=8];\n")
	buf.WriteString("\n")

	for _, m := range s.Marks {
		x, y := s.Transform.Apply(m.CX, m.CY)
		d := 2 * m.Radius * s.Transform.Scale / 72
		attrs := fmt.Sprintf("pos=\"%.2f,%.2f!\", width=%.4f, fillcolor=%q", x, h-y, d, withAlpha(m.Fill, m.Opacity))
		if opts.Labels {
			attrs += fmt.Sprintf(", xlabel=%q", string(m.ID))
		}
		if t, ok := opts.Titles[string(m.ID)]; ok {
			attrs += fmt.Sprintf(", tooltip=%q", t)
		}
		if m.URL != "" {
			attrs += fmt.Sprintf(", URL=%q, target=\"_blank\"", m.URL)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", string(m.ID), attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// withAlpha appends an alpha byte to a #rrggbb color.
func withAlpha(color string, opacity float64) string {
	if len(color) != 7 || color[0] != '#' {
		return color
	}
	a := int(math.Round(math.Max(0, math.Min(1, opacity)) * 255))
	return fmt.Sprintf("%s%02x", color, a)
}

// RenderDOT lays out a DOT graph with neato and renders it to SVG.
// Returns the SVG bytes ready for display or further conversion with
// render.ToPDF or render.ToPNG.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()
	g.SetLayout("neato")

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
