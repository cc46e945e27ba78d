package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/papermap/pkg/paper"
	"github.com/matzehuels/papermap/pkg/papermap"
	"github.com/matzehuels/papermap/pkg/styles"
	"github.com/matzehuels/papermap/pkg/tooltip"
	"github.com/matzehuels/papermap/pkg/viewport"
)

const (
	tooltipCSS = `
    .node { cursor: pointer; transition: r 0.1s ease; }
    .tooltip { pointer-events: none; transition: opacity 0.15s ease; }
    .tooltip[visibility="hidden"] { opacity: 0; }
    .tooltip[visibility="visible"] { opacity: 1; }
    .tooltip .title { font-weight: bold; font-size: 14px; }
    .tooltip .meta { font-size: 12px; fill: #444; }
    .tooltip .link { font-size: 12px; fill: #1a73e8; cursor: pointer; }
    .tooltip a { pointer-events: auto; }`

	tooltipJS = `
    const activeRadius = '%g', accent = '%s', linger = 400;
    document.querySelectorAll('.node').forEach(el => {
      const tip = document.querySelector('.tooltip[data-for="' + CSS.escape(el.dataset.id) + '"]');
      const link = tip && tip.querySelector('a');
      const r = el.getAttribute('r'), fill = el.getAttribute('fill');
      let timer = null;
      const show = () => {
        clearTimeout(timer);
        el.setAttribute('r', activeRadius);
        el.setAttribute('fill', accent);
        if (tip) tip.setAttribute('visibility', 'visible');
      };
      const hide = () => {
        el.setAttribute('r', r);
        el.setAttribute('fill', fill);
        if (tip) tip.setAttribute('visibility', 'hidden');
      };
      el.addEventListener('mouseenter', show);
      el.addEventListener('mouseleave', () => { timer = link ? setTimeout(hide, linger) : hide(); });
      if (link) {
        link.addEventListener('mouseenter', show);
        link.addEventListener('mouseleave', () => { timer = setTimeout(hide, linger); });
      }
    });`
)

const (
	tooltipPadding  = 12.0
	titleLineHeight = 18.0
	metaLineHeight  = 16.0
	charWidth       = 0.55
	titleFontSize   = 14.0
	metaFontSize    = 12.0
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	records    map[paper.ID]paper.Record
	placer     tooltip.Placer
	resolver   styles.Resolver
	background string
	title      string
}

// WithTooltips embeds one hover panel per node, filled from records.
func WithTooltips(records []paper.Record) SVGOption {
	return func(r *svgRenderer) {
		r.records = make(map[paper.ID]paper.Record, len(records))
		for _, rec := range records {
			if _, dup := r.records[rec.ID]; !dup {
				r.records[rec.ID] = rec
			}
		}
	}
}

// WithPlacer sets the panel geometry. Defaults to [tooltip.DefaultPlacer].
func WithPlacer(p tooltip.Placer) SVGOption { return func(r *svgRenderer) { r.placer = p } }

// WithResolver sets the hover styling used by the embedded script.
func WithResolver(res styles.Resolver) SVGOption { return func(r *svgRenderer) { r.resolver = res } }

// WithBackground fills the canvas with color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG draws the scene as a standalone SVG document sized to the
// scene's surface.
func RenderSVG(s papermap.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{
		placer:     tooltip.DefaultPlacer(),
		resolver:   styles.DefaultResolver(),
		background: "white",
	}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := s.Surface.Size.Width, s.Surface.Size.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	fmt.Fprintf(&buf, `  <g class="nodes" transform="%s">`+"\n", s.Transform)
	for _, m := range s.Marks {
		renderMark(&buf, m)
	}
	buf.WriteString("  </g>\n")

	if r.records != nil {
		for _, m := range s.Marks {
			if s.Tooltip != nil && s.Tooltip.ID == m.ID {
				continue
			}
			rec, ok := r.records[m.ID]
			if !ok {
				continue
			}
			vm := tooltip.NewViewModel(rec, viewport.Point{X: m.CX, Y: m.CY})
			rect := r.placer.Place(vm.AnchorX, vm.AnchorY, s.Transform, viewport.Point{}, s.Surface.Size)
			renderTooltip(&buf, vm, rect, false)
		}
	}
	if s.Tooltip != nil {
		rect := s.Tooltip.Rect.Offset(-s.Surface.Origin.X, -s.Surface.Origin.Y)
		renderTooltip(&buf, s.Tooltip.ViewModel, rect, true)
	}

	if r.records != nil {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", tooltipCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA["+tooltipJS+"\n  ]]></script>\n",
			r.resolver.ActiveRadius, r.resolver.Palette.Accent)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderMark(buf *bytes.Buffer, m papermap.Mark) {
	id := escapeXML(string(m.ID))
	wrapURL(buf, m.URL, func() {
		fmt.Fprintf(buf, `<circle id="node-%s" class="node" data-id="%s" cx="%.2f" cy="%.2f" r="%g" fill="%s" opacity="%g"/>`,
			id, id, m.CX, m.CY, m.Radius, escapeXML(m.Fill), m.Opacity)
	})
	buf.WriteString("\n")
}

func renderTooltip(buf *bytes.Buffer, vm tooltip.ViewModel, rect tooltip.Rect, visible bool) {
	visibility := "hidden"
	if visible {
		visibility = "visible"
	}
	fmt.Fprintf(buf, `  <g class="tooltip" data-for="%s" visibility="%s" transform="translate(%.1f,%.1f)">`+"\n",
		escapeXML(string(vm.ID)), visibility, rect.Left, rect.Top)
	fmt.Fprintf(buf, `    <rect width="%.0f" height="%.0f" rx="6" fill="white" stroke="#ccc" opacity="0.97"/>`+"\n",
		rect.Width, rect.Height)

	textWidth := rect.Width - 2*tooltipPadding
	y := tooltipPadding
	bottom := rect.Height - tooltipPadding
	line := func(class, text string, size, height float64) {
		if y+height > bottom {
			return
		}
		y += height
		fmt.Fprintf(buf, `    <text class="%s" x="%.0f" y="%.0f">%s</text>`+"\n",
			class, tooltipPadding, y-4, escapeXML(text))
	}

	for _, l := range wrapText(vm.Title, maxChars(textWidth, titleFontSize)) {
		line("title", l, titleFontSize, titleLineHeight)
	}
	for _, l := range wrapText(vm.Authors, maxChars(textWidth, metaFontSize)) {
		line("meta", l, metaFontSize, metaLineHeight)
	}
	if vm.Session != "" {
		line("meta", "Session: "+vm.Session, metaFontSize, metaLineHeight)
	}
	if vm.Location != "" {
		line("meta", "Location: "+vm.Location, metaFontSize, metaLineHeight)
	}
	if vm.HasURL() && y+metaLineHeight <= bottom {
		y += metaLineHeight
		fmt.Fprintf(buf, `    <a href="%s" target="_blank"><text class="link" x="%.0f" y="%.0f">Open paper ↗</text></a>`+"\n",
			escapeXML(vm.URL), tooltipPadding, y-4)
	}
	buf.WriteString("  </g>\n")
}

func maxChars(width, fontSize float64) int {
	return max(8, int(width/(fontSize*charWidth)))
}

// wrapText breaks s into lines of at most n characters on word boundaries.
// Words longer than n are cut.
func wrapText(s string, n int) []string {
	var lines []string
	var cur strings.Builder
	for _, w := range strings.Fields(s) {
		for len([]rune(w)) > n {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			rs := []rune(w)
			lines = append(lines, string(rs[:n]))
			w = string(rs[n:])
		}
		if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(w)) > n {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func wrapURL(buf *bytes.Buffer, url string, fn func()) {
	if url != "" {
		fmt.Fprintf(buf, `    <a href="%s" target="_blank">`, escapeXML(url))
	} else {
		buf.WriteString("    ")
	}
	fn()
	if url != "" {
		buf.WriteString("</a>")
	}
}
