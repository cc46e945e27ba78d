// Package paper defines the records consumed by the paper map renderer.
//
// A [Record] is one conference paper positioned in a precomputed 2D
// embedding. Coordinates are normalized to the unit square by the
// embedding job; this package never computes them.
//
// A [HighlightSet] holds the ids currently matched by a text search. The
// empty set means that no filter is active, which renders differently from
// an active filter that matches nothing but the hovered node.
//
//	records, _ := io.ImportJSON("tsne_papers.json")
//	hl := paper.Search(records.Records, "diffusion")
//	fmt.Println(hl.Len(), "matches")
package paper
