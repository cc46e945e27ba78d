// Package papermap is the interactive scatter map of paper embeddings.
//
// A [Map] owns the pan/zoom transform, the hover state and the tooltip, and
// derives one mark per record from three inputs: the records, the highlight
// set and the transform. Whenever an input changes the map reconciles its
// marks by record id and publishes a [Scene] to its subscribers:
//
//	m := papermap.New(papermap.DefaultConfig(), papermap.WithOpener(browser))
//	cancel := m.Subscribe(func(s papermap.Scene) { draw(s) })
//	defer cancel()
//
//	m.Resize(papermap.Surface{Size: viewport.Size{Width: 800, Height: 600}}, window)
//	m.SetRecords(records)
//	m.SetHighlight(paper.Search(records, "nerf"))
//
// Hosts forward pointer input with [Map.Gesture], [Map.PointerEnter],
// [Map.PointerLeave], [Map.PointerMove] and [Map.Click]. Pointer positions
// are surface pixels; tooltip rectangles are window pixels.
//
// A Map is driven from a single event loop and is not safe for concurrent
// use. Subscribers run synchronously inside the call that changed the map.
package papermap
