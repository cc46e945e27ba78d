// Package sink turns a map [papermap.Scene] into output artifacts.
//
// # SVG
//
// [RenderSVG] writes a self-contained interactive SVG. The node layer is
// wrapped in a single group carrying the scene's pan/zoom transform, and
// each node links to its paper when a URL is present. With [WithTooltips]
// one info panel per node is laid out ahead of time by the tooltip placer
// and toggled by a small embedded script on hover, so the file works
// without a server.
//
// # JSON
//
// [RenderJSON] dumps the scene: surface, transform, resolved marks and the
// visible tooltip. It is the format used to inspect a render in tests and
// scripts.
//
// # Graphviz
//
// [ToDOT] emits the scene as an undirected graph whose nodes are pinned at
// their projected positions; [RenderDOT] lays it out with neato and returns
// SVG that can be converted further with [render.ToPDF] or [render.ToPNG].
//
// [render.ToPDF]: github.com/matzehuels/papermap/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/papermap/pkg/render.ToPNG
package sink
