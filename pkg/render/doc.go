// Package render converts rendered maps between output formats.
//
// The map itself is drawn by the sinks in [sink]; this package only turns
// the resulting SVG into raster or print formats with the external
// rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(scene)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [sink]: github.com/matzehuels/papermap/pkg/render/sink
package render
