// Package nodelink renders a cluster hierarchy as a node-link diagram.
//
// [ToDOT] emits Graphviz DOT source with one rank per level and an edge from
// every parent to each child. [RenderSVG] lays it out in-process with
// [github.com/goccy/go-graphviz], so no Graphviz installation is needed.
//
//	dot := nodelink.ToDOT(lm, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package nodelink
